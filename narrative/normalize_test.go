package narrative

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		def      string
		expected string
	}{
		{"nil uses default", nil, Unknown, "unknown"},
		{"blank uses default", "  ", Unknown, "unknown"},
		{"empty uses default", "", Unknown, "unknown"},
		{"value is trimmed", " x ", Unknown, "x"},
		{"custom default", "", "an unknown indication", "an unknown indication"},
		{"NaN uses default", math.NaN(), Unknown, "unknown"},
		{"whole float has no decimals", float64(34), Unknown, "34"},
		{"fractional float", 34.5, Unknown, "34.5"},
		{"json number keeps source text", json.Number("34.0"), Unknown, "34.0"},
		{"int", 12, Unknown, "12"},
		{"bool", true, Unknown, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.value, tt.def); got != tt.expected {
				t.Errorf("Normalize(%v, %q) = %q, expected %q", tt.value, tt.def, got, tt.expected)
			}
		})
	}
}

func TestJoinItems(t *testing.T) {
	tests := []struct {
		items    []string
		expected string
	}{
		{nil, ""},
		{[]string{}, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b, and c"},
		{[]string{"a", "b", "c", "d"}, "a, b, c, and d"},
		{[]string{"", "a", "", "b"}, "a and b"},
		{[]string{"", ""}, ""},
		{[]string{"zeta", "alpha"}, "zeta and alpha"},
	}

	for _, tt := range tests {
		if got := JoinItems(tt.items); got != tt.expected {
			t.Errorf("JoinItems(%q) = %q, expected %q", tt.items, got, tt.expected)
		}
	}
}
