// Package core holds the ledger's domain types and money parsing.
//
// Amounts are decimal values, never binary floats: sums and balances must be
// exact. Direction (income vs expense) is carried by Kind, so amounts are
// always positive.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a positive decimal amount.
//
// Both dot (100.50) and comma (100,50) decimal separators are accepted.
// Signed, zero, empty and malformed input returns ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed; kind carries the sign
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatBRL renders an amount the way the bot and dashboard display it.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
