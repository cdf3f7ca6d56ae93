package query

import "testing"

func TestExtractModelNumber(t *testing.T) {
	tests := []struct {
		query     string
		wantModel string
	}{
		{"STM32F103 dev board", "STM32F103"},
		{"TP4056 charger", "TP4056"},
		{"1N4148 diode", "1N4148"},
		{"WS2812B strip", "WS2812B"},
		{"ESP32-C3 module", "ESP32-C3"},
		{"AMS1117 ldo", "AMS1117"},
	}
	for _, tt := range tests {
		model, rest := ExtractModelNumber(tt.query)
		if model != tt.wantModel {
			t.Errorf("ExtractModelNumber(%q) = %q, want %q", tt.query, model, tt.wantModel)
		}
		if rest == tt.query {
			t.Errorf("remaining query %q should have the model removed", rest)
		}
	}
}

func TestExtractModelNumberRejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"generic acronym", "LED red 0603"},
		{"package designator", "SOT23 transistor"},
		{"package with suffix", "SOD323 diode package"},
		{"plain text", "ceramic capacitor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, rest := ExtractModelNumber(tt.query)
			if model != "" {
				t.Errorf("ExtractModelNumber(%q) = %q, want no match", tt.query, model)
			}
			if rest != tt.query {
				t.Errorf("remaining = %q, want query unchanged", rest)
			}
		})
	}
}
