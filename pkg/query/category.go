package query

import (
	"strings"

	"github.com/partstack/partstack/pkg/part"
)

// categoryAbbreviations maps shorthand query terms to a substring of
// the canonical category name, resolved dynamically against whatever
// categories the backend currently serves.
var categoryAbbreviations = []struct {
	abbr      string
	substring string
}{
	{"res", "resistors"},
	{"caps", "capacitors"},
	{"ind", "inductors"},
	{"conn", "connectors"},
	{"xtal", "crystals"},
	{"osc", "oscillators"},
	{"opto", "optocouplers"},
	{"pmic", "power management"},
	{"mcu", "embedded processors"},
	{"micro", "embedded processors"},
	{"mem", "memory"},
	{"amp", "amplifiers"},
	{"reg", "power management"},
	{"sw", "switches"},
	{"xfmr", "transformers"},
}

// MatchCategory resolves a free-text term to a loaded category. Tried in
// order: abbreviation table, exact name match, singular-of-plural match,
// then prefix match for terms of 4+ characters. Returns nil when the
// categories are not loaded or nothing matches.
func MatchCategory(term string, categories []part.Category) *part.Category {
	if term == "" || len(categories) == 0 {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(term))

	for _, entry := range categoryAbbreviations {
		if lower != entry.abbr {
			continue
		}
		for i := range categories {
			if strings.Contains(strings.ToLower(categories[i].Name), entry.substring) {
				return &categories[i]
			}
		}
	}

	for i := range categories {
		if strings.EqualFold(categories[i].Name, lower) {
			return &categories[i]
		}
	}

	// "resistor" matches the "Resistors" category.
	for i := range categories {
		if strings.EqualFold(categories[i].Name, lower+"s") {
			return &categories[i]
		}
	}

	if len(lower) >= 4 {
		for i := range categories {
			if strings.HasPrefix(strings.ToLower(categories[i].Name), lower) {
				return &categories[i]
			}
		}
	}

	return nil
}
