// Package core provides the wallet domain types and money handling utilities.
//
// Amounts are exact decimals; they are never converted to floating point for
// arithmetic or comparison.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmountLen bounds the accepted input so arithmetic stays cheap.
const maxAmountLen = 32

// plain digits with an optional fractional part; no sign, exponent or grouping
var amountPattern = regexp.MustCompile(`^\d*\.?\d+$`)

// ParseAmount converts user input into a strictly positive decimal amount.
//
// Surrounding whitespace is ignored. Empty, unparsable, zero and negative
// inputs return ErrInvalidAmount, as do exponent notation, signs, decimal
// commas and inputs longer than 32 characters.
//
// Examples:
//   ParseAmount("100")    -> 100, nil
//   ParseAmount(" 12.5 ") -> 12.5, nil
//   ParseAmount("0")      -> 0, ErrInvalidAmount
//   ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen || !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two fractional digits and no
// grouping, as used in messages and prompts.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatBalance renders a balance with thousands grouping and two fractional
// digits, e.g. 2,500.50.
func FormatBalance(d decimal.Decimal) string {
	return groupFixed(d.StringFixed(2))
}

// FormatGrouped renders a value with thousands grouping and only the
// fractional digits it needs, e.g. 2,500.5 or 8,000,000.
func FormatGrouped(d decimal.Decimal) string {
	out := groupFixed(d.StringFixed(3))
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

// groupFixed inserts thousands separators into the integer part of a
// fixed-point string. Digits are never converted to a binary number.
func groupFixed(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
