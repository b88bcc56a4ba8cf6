// Package money converts user-entered decimal amounts to integer cents.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when the input is not a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountOutOfRange is returned when the amount's magnitude exceeds MaxCents.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// MaxCents is the largest magnitude of any stored amount, just under 10^13 currency units.
const MaxCents int64 = 999_999_999_999_999

var maxCents = decimal.NewFromInt(MaxCents)

// ParseCents parses a decimal string such as "1,250.00" or "19.999" into cents.
// Thousands separators and surrounding spaces are ignored; more than two fractional
// digits are rounded half away from zero. Empty input is ErrInvalidAmount.
func ParseCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}

// MulCents returns qty * cents, or ErrAmountOutOfRange when the product's magnitude exceeds MaxCents.
func MulCents(qty, cents int64) (int64, error) {
	return checked(decimal.NewFromInt(qty).Mul(decimal.NewFromInt(cents)))
}

// AddCents returns a + b, or ErrAmountOutOfRange when the sum's magnitude exceeds MaxCents.
func AddCents(a, b int64) (int64, error) {
	return checked(decimal.NewFromInt(a).Add(decimal.NewFromInt(b)))
}

func checked(d decimal.Decimal) (int64, error) {
	if d.Abs().GreaterThan(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	return d.IntPart(), nil
}

// ParseOptionalCents is ParseCents with empty input meaning zero.
func ParseOptionalCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseCents(s)
}

// FormatCents renders cents as a decimal string with two fractional digits.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
