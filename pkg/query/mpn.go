package query

import (
	"regexp"
	"strings"
)

// Packaging and ordering suffixes distributors append to part numbers
// but BOMs usually omit. Checked in order; only the first match is
// stripped.
var mpnTrailingSuffixes = []string{
	"-TR",     // tape & reel
	"/TR",     // tape & reel, alternate format
	"-T",      // tape
	"-CT",     // cut tape
	"-ND",     // Digi-Key ordering suffix
	"-DK",     // Digi-Key ordering suffix
	"#PBF",    // lead-free
	"-PBF",    // lead-free
	"#PBFREE", // lead-free
	"-PBFREE", // lead-free
	"+T",      // tape
	"+TR",     // tape & reel
}

// Matches part numbers where a "T" can be inserted before the variant
// suffix, e.g. MCP73831-2ACI/MC -> MCP73831T-2ACI/MC (Microchip tape &
// reel convention).
var mpnInsertTPattern = regexp.MustCompile(`^([A-Z]{2,5}\d{2,5})(-[A-Z0-9/]+)$`)

var (
	mpnLetterPrefix = regexp.MustCompile(`(?i)^[A-Z]{1,5}\d{2,}`)
	mpnDigitPrefix  = regexp.MustCompile(`(?i)^\d[A-Z]\d{3,}`)
)

// NormalizeMPN generates part-number variants to try when the original
// query returns no results. The original query is always first; generated
// variants are uppercase and deduplicated case-insensitively.
func NormalizeMPN(query string) []string {
	variants := []string{query}
	seen := map[string]struct{}{strings.ToUpper(query): {}}
	working := strings.ToUpper(query)

	stripped := working
	for _, suffix := range mpnTrailingSuffixes {
		if strings.HasSuffix(stripped, suffix) {
			stripped = stripped[:len(stripped)-len(suffix)]
			break
		}
	}
	if _, ok := seen[stripped]; !ok {
		variants = append(variants, stripped)
		seen[stripped] = struct{}{}
	}

	for _, candidate := range []string{working, stripped} {
		m := mpnInsertTPattern.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		base, suffix := m[1], m[2]
		if strings.HasSuffix(base, "T") {
			continue
		}
		withT := base + "T" + suffix
		if _, ok := seen[withT]; !ok {
			variants = append(variants, withT)
			seen[withT] = struct{}{}
		}
	}

	return variants
}

// LooksLikeMPN reports whether a query resembles a manufacturer part
// number rather than a free-text description.
func LooksLikeMPN(query string) bool {
	if len(query) < 4 || len(query) > 40 {
		return false
	}

	hasLetter, hasDigit := false, false
	for _, c := range query {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return false
	}

	// IC style (STM32, MCP73831) or discrete style (1N4148, 2N2222).
	if mpnLetterPrefix.MatchString(query) || mpnDigitPrefix.MatchString(query) {
		return true
	}
	return strings.ContainsAny(query, "-/")
}
