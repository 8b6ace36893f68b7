package stellar

import (
	"fmt"
	"strconv"
	"strings"
)

// StroopsPerUnit is the number of stroops in one whole XLM.
const StroopsPerUnit = 10_000_000

// ToStroops converts a decimal amount string (up to 7 fractional digits)
// into integer stroops without going through floating point.
func ToStroops(amount string) (int64, error) {
	if amount == "" {
		return 0, fmt.Errorf("empty amount")
	}
	// ParseInt would accept a sign in either part ("-0" parses to 0, so a
	// whole-part check alone misses "-0.5"), so reject signs up front.
	if amount[0] == '-' || amount[0] == '+' {
		return 0, fmt.Errorf("amount %q must be non-negative", amount)
	}
	wholePart, fracPart, _ := strings.Cut(amount, ".")
	if wholePart == "" {
		wholePart = "0"
	}

	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if len(fracPart) > 7 {
		return 0, fmt.Errorf("amount %q has more than 7 fractional digits", amount)
	}
	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return 0, fmt.Errorf("invalid amount %q: fractional part must be digits", amount)
		}
	}
	// Right-pad so "1.5" and "1.5000000" both map to 15000000 stroops.
	fracPart += strings.Repeat("0", 7-len(fracPart))
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return whole*StroopsPerUnit + frac, nil
}

// FromStroops renders integer stroops as a canonical 7-decimal amount
// string, e.g. FromStroops(15000000) == "1.5000000".
func FromStroops(stroops int64) string {
	whole := stroops / StroopsPerUnit
	frac := stroops % StroopsPerUnit
	return fmt.Sprintf("%d.%07d", whole, frac)
}
