package api

import (
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gbpjpy", "GBPJPY"},
		{"GBP-JPY", "GBPJPY"},
		{"GBP/JPY", "GBPJPY"},
		{"xauusd", "XAUUSD"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeSymbol(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeSymbol(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}
