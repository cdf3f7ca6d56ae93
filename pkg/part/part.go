// Package part defines the normalized component records shared by all
// distributor integrations and the local catalog.
package part

// Source identifies which backend produced a normalized part.
type Source string

const (
	SourceJLCPCB  Source = "jlcpcb"
	SourceMouser  Source = "mouser"
	SourceDigiKey Source = "digikey"
	SourceCatalog Source = "catalog"
)

// PriceBreak is one quantity tier of a distributor price ladder.
type PriceBreak struct {
	Qty      int     `json:"qty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// NormalizedPart is the uniform result record every backend maps into.
// One instance is constructed per distributor result item.
type NormalizedPart struct {
	Source        Source            `json:"source"`
	PartNumber    string            `json:"part_number"`
	MfrPartNumber string            `json:"mfr_part_number"`
	Manufacturer  string            `json:"manufacturer"`
	Description   string            `json:"description"`
	Category      string            `json:"category,omitempty"`
	Stock         int               `json:"stock"`
	Price         *float64          `json:"price,omitempty"`
	PriceBreaks   []PriceBreak      `json:"price_breaks,omitempty"`
	DatasheetURL  string            `json:"datasheet_url,omitempty"`
	ProductURL    string            `json:"product_url,omitempty"`
	RoHS          string            `json:"rohs,omitempty"`
	Lifecycle     string            `json:"lifecycle,omitempty"`
	Parameters    map[string]string `json:"parameters,omitempty"`
	MinQty        int               `json:"min_qty,omitempty"`
	Currency      string            `json:"currency,omitempty"`
}

// DedupeByMPN removes parts whose manufacturer part number was already
// seen, preserving first-seen order. Parts with an empty MPN are kept
// unconditionally.
func DedupeByMPN(parts []NormalizedPart) []NormalizedPart {
	seen := make(map[string]struct{}, len(parts))
	out := parts[:0:0]
	for _, p := range parts {
		if p.MfrPartNumber == "" {
			out = append(out, p)
			continue
		}
		if _, ok := seen[p.MfrPartNumber]; ok {
			continue
		}
		seen[p.MfrPartNumber] = struct{}{}
		out = append(out, p)
	}
	return out
}
