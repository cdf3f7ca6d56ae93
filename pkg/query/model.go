package query

import (
	"regexp"
	"strings"
)

// Model number patterns, most specific families before the generic
// alphanumeric form. First match wins.
var modelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(ESP32-[A-Z0-9]+|STM32[A-Z]\d+[A-Z0-9]*|RP2040|ATMEGA\d+[A-Z]*|PIC\d+[A-Z0-9]*)\b`),
	regexp.MustCompile(`(?i)\b(TP[45]\d{3}|AMS\d{4}|LM\d{4}|NE555|TL\d{3}|LMV?\d{3,4}|TPS\d{4,5})\b`),
	regexp.MustCompile(`(?i)\b(AO\d{4}|SI\d{4}|IRF\d{3,4}|IRLZ?\d{2,4}|2N\d{4}|BC\d{3})\b`),
	regexp.MustCompile(`(?i)\b(WS2812[A-Z]*|SK6812|APA102|TLC5940)\b`),
	// Diodes and discretes: 1N4148, 1N5819, 1SS400.
	regexp.MustCompile(`(?i)\b(1N\d{4}[A-Z]*|1SS\d{3}[A-Z]*|BAT\d{2}[A-Z]*|BAS\d{2}[A-Z]*|BAV\d{2}[A-Z]*)\b`),
	// Generic IC model numbers: TP4056, AMS1117, ESP32. Last so the
	// family patterns above get first claim.
	regexp.MustCompile(`(?i)\b([A-Z]{2,5}\d{2,5}[A-Z]?\d*(?:-[A-Z0-9]+)?)\b`),
}

// Generic acronyms that the patterns above would otherwise match.
var modelStopwords = map[string]struct{}{
	"LED": {}, "LCD": {}, "USB": {}, "SPI": {}, "I2C": {},
	"ADC": {}, "DAC": {}, "MCU": {}, "CPU": {}, "GPU": {},
}

// Package name prefixes. A match of prefix+digits (optionally trailing
// L's) is a package designator, not a model number.
var packagePrefixes = []string{
	"SOT", "SOD", "SOP", "SOIC", "SSOP", "TSSOP", "MSOP", "QSOP",
	"QFN", "DFN", "QFP", "LQFP", "TQFP", "BGA", "DIP", "SIP",
}

// ExtractModelNumber pulls a likely component model number out of a
// free-text query. Returns the model and the query with it removed, or
// ("", query) when nothing qualifies.
func ExtractModelNumber(query string) (string, string) {
	for _, pattern := range modelPatterns {
		loc := pattern.FindStringSubmatchIndex(query)
		if loc == nil {
			continue
		}
		model := query[loc[2]:loc[3]]
		upper := strings.ToUpper(model)
		if _, stop := modelStopwords[upper]; stop {
			continue
		}
		if isPackageDesignator(upper) {
			continue
		}
		remaining := strings.TrimSpace(query[:loc[0]] + query[loc[1]:])
		return model, remaining
	}
	return "", query
}

func isPackageDesignator(upper string) bool {
	for _, prefix := range packagePrefixes {
		if !strings.HasPrefix(upper, prefix) || len(upper) <= len(prefix) {
			continue
		}
		rest := upper[len(prefix):]
		if rest[0] < '0' || rest[0] > '9' {
			continue
		}
		ok := true
		for _, c := range rest {
			if (c < '0' || c > '9') && c != 'L' {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
