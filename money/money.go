package money

import (
	"math"
	"strconv"

	"settlex/config"
)

// Epsilon is the negligibility threshold: any magnitude below one stroop
// (1e-7 XLM) is treated as zero.
const Epsilon = 1e-7

// decimals is the native precision of the currency (7 fractional digits).
const decimals = 7

// Format rounds n to 7 decimal digits and renders it as a fixed-point
// string, e.g. Format(100) == "100.0000000". It never uses scientific
// notation. Negative or NaN input is a caller bug; Format does not clamp.
func Format(n float64) string {
	rounded := math.Round(n*1e7) / 1e7
	return strconv.FormatFloat(rounded, 'f', decimals, 64)
}

// Parse converts an amount string back to a float64. It accepts any string
// strconv can parse; use IsValidAmountString to gate user input first.
func Parse(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// IsValidAmountString reports whether s parses to a finite number n with
// 0 < n <= config.MaxAmount.
func IsValidAmountString(s string) bool {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	return n > 0 && n <= config.MaxAmount
}

// IsNegligible reports whether n is close enough to zero to be ignored.
func IsNegligible(n float64) bool {
	return math.Abs(n) < Epsilon
}

// ShortAddress shortens a payment address for display,
// e.g. "GABCDE...WXYZ12". Returns the input unchanged when it is already
// short enough, and "" for an empty address.
func ShortAddress(address string, chars int) string {
	if address == "" {
		return ""
	}
	if chars <= 0 || len(address) <= 2*chars+3 {
		return address
	}
	return address[:chars] + "..." + address[len(address)-chars:]
}
