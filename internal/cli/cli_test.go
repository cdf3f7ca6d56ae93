package cli

import (
	"strings"
	"testing"

	"github.com/partstack/partstack/pkg/part"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is far too long", 10, "this is f…"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLCSCPattern(t *testing.T) {
	for _, code := range []string{"C25804", "c123"} {
		if !lcscPattern.MatchString(code) {
			t.Errorf("%q should match", code)
		}
	}
	for _, term := range []string{"STM32F103C8T6", "C", "25804", "C25804-TR"} {
		if lcscPattern.MatchString(term) {
			t.Errorf("%q should not match", term)
		}
	}
}

func TestFormatPartLine(t *testing.T) {
	line := formatPartLine(part.NormalizedPart{
		PartNumber:    "C25804",
		MfrPartNumber: "0603WAF1002T5E",
		Manufacturer:  "UNI-ROYAL",
		Stock:         100000,
	})
	for _, want := range []string{"C25804", "0603WAF1002T5E", "100000"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}
