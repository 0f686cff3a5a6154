// Package core provides money parsing and handling utilities.
//
// This file contains the parser used by the presentation layer to turn raw
// amount text into an exact decimal.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. No
// rounding is applied: every fractional digit given is kept. Returns a
// ValidationError wrapping ErrInvalidAmount for invalid formats, signs,
// exponents or zero amounts.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.345, nil
//	ParseAmount("-5")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	invalid := &ValidationError{Field: "amount", Err: ErrInvalidAmount}

	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, invalid
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, invalid
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, invalid
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) || r > unicode.MaxASCII {
				return decimal.Zero, invalid
			}
		}
	}
	intPart := parts[0]
	if intPart == "" {
		intPart = "0"
	}
	s = intPart
	if len(parts) == 2 && parts[1] != "" {
		s += "." + parts[1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
