// Package money centralizes the monetary parsing and rounding contract.
// Every cost leg and report figure goes through this package so that the
// same normalization (thousands separators, decimal comma) and the same
// 2-decimal currency rounding apply everywhere.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse normalizes a user-supplied monetary string and converts it to a
// decimal. Accepted inputs include "1.234,56", "1,234.56", "1234.56" and
// "R$ 1234,56". Unparsable input coerces to zero rather than failing the
// request — reporting endpoints stay available even with dirty data.
func Parse(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator; dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma:
		// Dot is the decimal separator; commas are thousands separators.
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round applies the currency rounding discipline: 2 decimal places,
// half away from zero. Applied after each aggregation step, not only
// at the end.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders d as a fixed 2-decimal string for report output.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
