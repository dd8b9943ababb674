// Package money parses the loosely formatted amounts found in broker exports
// into exact decimals.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var cleaner = strings.NewReplacer("$", "", ",", "", " ", "", " ", "")

// Parse converts strings such as "$15,050.00", "-$0.81", "(1.25)" or "45"
// into a decimal. Empty input (after cleanup) is zero without error.
// Malformed input returns zero together with an error; callers decide
// whether that is worth a warning.
func Parse(s string) (decimal.Decimal, error) {
	clean := cleaner.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}

	v, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		v = v.Abs().Neg()
	}
	return v, nil
}

// MustParse is Parse for literals known to be well formed.
func MustParse(s string) decimal.Decimal {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}
