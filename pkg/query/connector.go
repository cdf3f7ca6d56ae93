package query

import (
	"regexp"
	"strings"
)

// ConnectorSpec holds connector hints extracted from a query. Zero or
// more fields may be set depending on what the query revealed.
type ConnectorSpec struct {
	Series     string
	PitchMM    float64
	PinCount   int
	SearchTerm string
}

// JST series to pitch in mm, from JST datasheets.
var jstSeriesPitch = map[string]float64{
	"sh": 1.0, // Qwiic, STEMMA QT
	"sr": 1.0, // vertical SH
	"gh": 1.25,
	"zh": 1.5,
	"pa": 2.0,
	"ph": 2.0, // common in battery packs
	"eh": 2.5,
	"xh": 2.5,  // common in power
	"vh": 3.96, // high power
	"vl": 6.2,
	"bm": 1.0, // board-to-board
}

var jstSeriesPattern = regexp.MustCompile(
	`(?i)\bjst[\s-]*(sh|sr|gh|zh|pa|ph|eh|xh|vh|vl|bm)\b` +
		`|\b(sh|sr|gh|zh|pa|ph|eh|xh|vh|vl|bm)\s*(?:series|connector|plug|socket|receptacle)\b`)

var standaloneSeriesPattern = regexp.MustCompile(`(?i)\b(sh|gh|zh|ph|xh|vh|eh|pa)\b`)

var jstWordPattern = regexp.MustCompile(`(?i)\bjst\b`)

var multiSpace = regexp.MustCompile(`\s+`)

type brandSpec struct {
	brand string
	spec  ConnectorSpec
}

// Maker ecosystem brand names that imply a specific connector. Qwiic
// and STEMMA QT are JST SH 1.0mm 4-pin; the original STEMMA is the
// larger PH with a varying pin count; Grove is not JST at all.
var brandConnectorSpecs = []brandSpec{
	{"qwiic connector", ConnectorSpec{Series: "SH", PitchMM: 1.0, PinCount: 4, SearchTerm: "SH"}},
	{"qwiic", ConnectorSpec{Series: "SH", PitchMM: 1.0, PinCount: 4, SearchTerm: "SH"}},
	{"stemma qt", ConnectorSpec{Series: "SH", PitchMM: 1.0, PinCount: 4, SearchTerm: "SH"}},
	{"stemmaqt", ConnectorSpec{Series: "SH", PitchMM: 1.0, PinCount: 4, SearchTerm: "SH"}},
	{"stemma", ConnectorSpec{Series: "PH", PitchMM: 2.0, SearchTerm: "PH"}},
	{"easyc", ConnectorSpec{Series: "SH", PitchMM: 1.0, PinCount: 4, SearchTerm: "SH"}},
	{"easy c", ConnectorSpec{Series: "SH", PitchMM: 1.0, PinCount: 4, SearchTerm: "SH"}},
	{"grove", ConnectorSpec{PitchMM: 2.0, PinCount: 4, SearchTerm: "HY2.0"}},
}

// ExtractConnectorSeries pulls JST series codes and brand aliases out of
// a query. Returns the spec and the query with the matched text removed,
// or (nil, query) when nothing matches.
func ExtractConnectorSeries(query string) (*ConnectorSpec, string) {
	lower := strings.ToLower(query)

	for _, bs := range brandConnectorSpecs {
		idx := strings.Index(lower, bs.brand)
		if idx < 0 {
			continue
		}
		remaining := collapseSpaces(query[:idx] + query[idx+len(bs.brand):])
		spec := bs.spec
		return &spec, remaining
	}

	if loc := jstSeriesPattern.FindStringSubmatchIndex(query); loc != nil {
		var series string
		if loc[2] >= 0 {
			series = query[loc[2]:loc[3]]
		} else {
			series = query[loc[4]:loc[5]]
		}
		series = strings.ToUpper(series)
		remaining := collapseSpaces(query[:loc[0]] + query[loc[1]:])
		return &ConnectorSpec{
			Series:     series,
			PitchMM:    jstSeriesPitch[strings.ToLower(series)],
			SearchTerm: series,
		}, remaining
	}

	if strings.Contains(lower, "jst") {
		if loc := standaloneSeriesPattern.FindStringSubmatchIndex(query); loc != nil {
			series := strings.ToUpper(query[loc[2]:loc[3]])
			remaining := query[:loc[0]] + query[loc[1]:]
			remaining = collapseSpaces(jstWordPattern.ReplaceAllString(remaining, ""))
			return &ConnectorSpec{
				Series:     series,
				PitchMM:    jstSeriesPitch[strings.ToLower(series)],
				SearchTerm: series,
			}, remaining
		}
	}

	return nil, query
}

// PitchForSeries returns the pitch in mm for a JST series code, or 0 if
// the series is unknown.
func PitchForSeries(series string) float64 {
	return jstSeriesPitch[strings.ToLower(series)]
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}
