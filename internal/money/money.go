// Package money provides a fixed-point currency amount stored in integer minor units.
//
// Example: $10.50 is stored as Amount{Minor: 1050, Currency: "USD"} and
// ¥1000 as Amount{Minor: 1000, Currency: "JPY"}. Conversions to and from
// decimal strings go through shopspring/decimal so no value ever passes
// through a binary float.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrTooPrecise       = errors.New("amount has more decimal places than the currency allows")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrOverflow         = errors.New("amount out of range")
)

// Amount is a signed amount of a single currency in minor units (cents for USD).
type Amount struct {
	Minor    int64
	Currency string
}

// New creates an Amount from minor units.
func New(minor int64, cur string) Amount {
	return Amount{Minor: minor, Currency: normalize(cur)}
}

// Zero returns a zero amount in the given currency.
func Zero(cur string) Amount {
	return New(0, cur)
}

// Parse reads a decimal string such as "33.34" or "-5" as an amount of cur.
func Parse(s string, cur string) (Amount, error) {
	cur = normalize(cur)
	scale, err := Scale(cur)
	if err != nil {
		return Amount{}, err
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	shifted := d.Shift(int32(scale))
	if !shifted.Equal(shifted.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %q (%s uses %d)", ErrTooPrecise, s, cur, scale)
	}
	if shifted.Abs().GreaterThan(decimal.NewFromInt(1 << 62)) {
		return Amount{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	return Amount{Minor: shifted.IntPart(), Currency: cur}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string, cur string) Amount {
	a, err := Parse(s, cur)
	if err != nil {
		panic(err)
	}
	return a
}

// Scale returns the number of minor-unit digits used by the currency
// (2 for USD, 0 for JPY, 3 for BHD).
func Scale(cur string) (int, error) {
	unit, err := currency.ParseISO(normalize(cur))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, cur)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// ValidateCurrency reports whether cur is a known ISO 4217 code.
func ValidateCurrency(cur string) error {
	_, err := Scale(cur)
	return err
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	scale, err := Scale(a.Currency)
	if err != nil {
		scale = 2
	}
	return decimal.New(a.Minor, -int32(scale))
}

// String renders the amount with the currency's fixed number of decimals, e.g. "33.34".
func (a Amount) String() string {
	scale, err := Scale(a.Currency)
	if err != nil {
		scale = 2
	}
	return decimal.New(a.Minor, -int32(scale)).StringFixed(int32(scale))
}

// Add returns a + b. Both amounts must share a currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	minor, err := AddMinor(a.Minor, b.Minor)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Minor: minor, Currency: a.currencyWith(b)}, nil
}

// Sub returns a - b. Both amounts must share a currency.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	minor, err := SubMinor(a.Minor, b.Minor)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Minor: minor, Currency: a.currencyWith(b)}, nil
}

// AddMinor adds two minor-unit counts, failing with ErrOverflow instead of
// wrapping around.
func AddMinor(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return sum, nil
}

// SubMinor subtracts two minor-unit counts, failing with ErrOverflow instead
// of wrapping around.
func SubMinor(a, b int64) (int64, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, a, b)
	}
	return diff, nil
}

func (a Amount) Neg() Amount {
	return Amount{Minor: -a.Minor, Currency: a.Currency}
}

func (a Amount) Abs() Amount {
	if a.Minor < 0 {
		return a.Neg()
	}
	return a
}

func (a Amount) Sign() int {
	switch {
	case a.Minor > 0:
		return 1
	case a.Minor < 0:
		return -1
	default:
		return 0
	}
}

func (a Amount) IsZero() bool {
	return a.Minor == 0
}

// Sum adds all amounts. An empty list sums to the zero Amount.
func Sum(amounts ...Amount) (Amount, error) {
	if len(amounts) == 0 {
		return Amount{}, nil
	}
	total := amounts[0]
	for _, a := range amounts[1:] {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// sameCurrency treats an empty currency as compatible only with a zero amount,
// so a zero-value accumulator can be folded into any currency.
func (a Amount) sameCurrency(b Amount) error {
	if a.Currency == b.Currency {
		return nil
	}
	if a.Currency == "" && a.Minor == 0 || b.Currency == "" && b.Minor == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
}

func (a Amount) currencyWith(b Amount) string {
	if a.Currency == "" {
		return b.Currency
	}
	return a.Currency
}

func normalize(cur string) string {
	return strings.ToUpper(strings.TrimSpace(cur))
}
