package models

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// NormalizeCurrency upper-cases and trims an ISO 4217 code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// KnownCurrency reports whether code is an ISO 4217 currency code.
func KnownCurrency(code string) bool {
	return money.GetCurrency(NormalizeCurrency(code)) != nil
}

// FormatMoney renders amount in the given currency with its symbol and
// minor-unit precision (e.g., 3 decimals for OMR). Unknown or empty
// currencies fall back to a plain 2-decimal figure. Amounts too large for
// go-money's int64 minor units are shown as a plain figure at the
// currency's precision.
func FormatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(NormalizeCurrency(code))
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return amount.StringFixed(int32(cur.Fraction))
	}
	return cur.Formatter().Format(minor.IntPart())
}
