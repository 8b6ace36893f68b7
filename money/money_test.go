package money

import (
	"regexp"
	"testing"
)

var amountPattern = regexp.MustCompile(`^\d+\.\d{7}$`)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"whole number", 100, "100.0000000"},
		{"zero", 0, "0.0000000"},
		{"seven decimals kept", 1.2345678, "1.2345678"},
		{"rounds eighth decimal up", 1.23456789, "1.2345679"},
		{"rounds eighth decimal down", 1.23456781, "1.2345678"},
		{"third of one", 1.0 / 3.0, "0.3333333"},
		{"large amount", 99_999_999.9999999, "99999999.9999999"},
		{"sub-stroop rounds to zero", 4e-8, "0.0000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.input)
			if got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.expected)
			}
			if !amountPattern.MatchString(got) {
				t.Errorf("Format(%v) = %q does not match %s", tt.input, got, amountPattern)
			}
		})
	}
}

func TestFormatNeverScientific(t *testing.T) {
	// Very small and very large magnitudes must still render fixed-point.
	for _, n := range []float64{1e-7, 5e-7, 1e7, 12345678.9} {
		got := Format(n)
		if !amountPattern.MatchString(got) {
			t.Errorf("Format(%v) = %q, want fixed-point with 7 decimals", n, got)
		}
	}
}

func TestIsValidAmountString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple amount", "100", true},
		{"decimal amount", "0.0000001", true},
		{"ceiling", "100000000", true},
		{"above ceiling", "100000000.0000001", false},
		{"zero", "0", false},
		{"negative", "-5", false},
		{"not a number", "abc", false},
		{"empty", "", false},
		{"infinity", "Inf", false},
		{"nan", "NaN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAmountString(tt.input); got != tt.valid {
				t.Errorf("IsValidAmountString(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestIsNegligible(t *testing.T) {
	tests := []struct {
		input      float64
		negligible bool
	}{
		{0, true},
		{5e-8, true},
		{-5e-8, true},
		{1e-7, false},
		{-1e-7, false},
		{1, false},
	}

	for _, tt := range tests {
		if got := IsNegligible(tt.input); got != tt.negligible {
			t.Errorf("IsNegligible(%v) = %v, want %v", tt.input, got, tt.negligible)
		}
	}
}

func TestShortAddress(t *testing.T) {
	addr := "GABCDEFGHIJKLMNOPQRSTUVWXYZ234567ABCDEFGHIJKLMNOPQRSTUV"
	if got := ShortAddress(addr, 6); got != "GABCDE...QRSTUV" {
		t.Errorf("ShortAddress = %q", got)
	}
	if got := ShortAddress("", 6); got != "" {
		t.Errorf("ShortAddress(empty) = %q, want empty", got)
	}
	if got := ShortAddress("short", 6); got != "short" {
		t.Errorf("ShortAddress(short) = %q, want unchanged", got)
	}
}
