package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")
)

// ParseCents converts a user-entered decimal string (like "12.34") to cents
// as int64 without float drift. Prefer sending cents directly from clients;
// use this only at parsing boundaries.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: more than two decimal places", ErrInvalidMoney)
	}
	v := cents.IntPart()
	if !cents.Equal(decimal.NewFromInt(v)) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return v, nil
}

// FloatToCents converts a float amount to cents, rejecting NaN/Inf and
// overflow. Kept for payloads that still send JSON numbers.
func FloatToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidMoney
	}
	// Prevent overflow: int64 max ~9e18 => units max ~9e16
	if amount > 9e16 || amount < -9e16 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return int64(math.Round(amount * 100.0)), nil
}

// CentsString formats cents as a plain decimal string without going
// through floats, e.g. -12345 -> "-123.45".
func CentsString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
