package part

import "encoding/json"

// Subcategory is one leaf node of the distributor category tree.
type Subcategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Category is one top-level node of the distributor category tree.
type Category struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Count         int           `json:"count"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// SearchResult is a page of normalized parts plus pagination state.
type SearchResult struct {
	Parts   []NormalizedPart `json:"parts"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	HasMore bool             `json:"has_more"`
}

// Pin is one decoded pin of a component symbol.
type Pin struct {
	Number    string   `json:"number"`
	Name      string   `json:"name"`
	Functions []string `json:"functions,omitempty"`
	Type      PinType  `json:"type"`
}

// PinType classifies a pin by its electrical role.
type PinType string

const (
	PinPower   PinType = "power"
	PinGround  PinType = "ground"
	PinPassive PinType = "passive"
	PinIO      PinType = "io"
)

// InterfaceInfo describes one detected peripheral interface. Boolean
// interfaces (usb, eth, sdio) report Present only; counted interfaces
// report Count and the sorted instance labels.
type InterfaceInfo struct {
	Present   bool
	Count     int
	Instances []string
}

// MarshalJSON renders boolean interfaces as a bare true and counted
// interfaces as {count, instances}.
func (i InterfaceInfo) MarshalJSON() ([]byte, error) {
	if i.Present && i.Count == 0 {
		return []byte("true"), nil
	}
	return json.Marshal(struct {
		Count     int      `json:"count"`
		Instances []string `json:"instances"`
	}{i.Count, i.Instances})
}

// PinoutSummary is the derived interface overview of a parsed symbol.
type PinoutSummary struct {
	Power      []string                 `json:"power,omitempty"`
	Ground     []string                 `json:"ground,omitempty"`
	Interfaces map[string]InterfaceInfo `json:"interfaces,omitempty"`
}
