package query

import "testing"

var testSubcategories = map[string]int{
	"multilayer ceramic capacitors mlcc - smd/smt": 27,
	"aluminum electrolytic capacitors - smd":       29,
	"chip resistor - surface mount":                41,
	"crystals":                                     91,
	"crystal oscillators":                          92,
	"mosfets":                                      55,
	"tvs":                                          61,
}

func TestResolveSubcategoryName(t *testing.T) {
	tests := []struct {
		name   string
		wantID int
		wantOK bool
	}{
		{"mlcc", 27, true},      // alias
		{"MLCC", 27, true},      // alias, case-insensitive
		{"capacitor", 27, true}, // alias
		{"multilayer ceramic capacitors mlcc - smd/smt", 27, true}, // exact
		{"crystals", 91, true}, // exact
		{"crystal", 91, true},  // shortest containing match
		{"mosfet", 55, true},   // containment
		{"nonexistent widget", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		id, ok := ResolveSubcategoryName(tt.name, testSubcategories, nil)
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("ResolveSubcategoryName(%q) = (%d, %v), want (%d, %v)",
				tt.name, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestResolveSubcategoryNameAliasMatchesCanonical(t *testing.T) {
	viaAlias, ok1 := ResolveSubcategoryName("mlcc", testSubcategories, nil)
	viaName, ok2 := ResolveSubcategoryName("multilayer ceramic capacitors mlcc - smd/smt", testSubcategories, nil)
	if !ok1 || !ok2 || viaAlias != viaName {
		t.Errorf("alias resolved to %d, canonical name to %d; want equal", viaAlias, viaName)
	}
}

func TestResolveSubcategoryNameShortestWins(t *testing.T) {
	// "crystal" is contained in both "crystals" (8 chars) and
	// "crystal oscillators" (19 chars); the shorter name wins.
	id, ok := ResolveSubcategoryName("crystal", testSubcategories, nil)
	if !ok || id != 91 {
		t.Errorf("ResolveSubcategoryName(crystal) = (%d, %v), want (91, true)", id, ok)
	}
}

func TestFindSimilarSubcategories(t *testing.T) {
	info := map[int]SubcategoryInfo{
		27: {Name: "Multilayer Ceramic Capacitors MLCC - SMD/SMT", Category: "Capacitors"},
		29: {Name: "Aluminum Electrolytic Capacitors - SMD", Category: "Capacitors"},
	}
	got := FindSimilarSubcategories("ceramic capacitors", testSubcategories, info, 5)
	if len(got) == 0 {
		t.Fatal("FindSimilarSubcategories() = empty, want suggestions")
	}
	seen := make(map[int]struct{})
	for _, s := range got {
		if _, dup := seen[s.ID]; dup {
			t.Errorf("duplicate id %d in suggestions", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	if got := FindSimilarSubcategories("ceramic capacitors", testSubcategories, info, 1); len(got) > 1 {
		t.Errorf("limit 1 returned %d suggestions", len(got))
	}
}
