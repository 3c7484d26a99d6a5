// Package money represents currency amounts as integer minor units (cents)
// and renders them as exact two-decimal strings.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string is not a valid amount.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Amount is a monetary value in cents. It marshals to and from a JSON
// string such as "65.40" and is stored as NUMERIC(12,2).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// Max is the largest magnitude a NUMERIC(12,2) column holds, in cents.
const Max Amount = 999999999999

// Parse converts a decimal string ("19.9", "19.90", "20") into an Amount.
// More than two fractional digits is rejected rather than rounded.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(int64(Max))) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return Amount(cents.IntPart()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromCents builds an Amount from minor units.
func FromCents(c int64) Amount { return Amount(c) }

// InRange reports whether the amount fits in storage.
func (a Amount) InRange() bool { return a >= -Max && a <= Max }

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 { return int64(a) }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a < 0 }

// String renders the amount with exactly two decimal places.
func (a Amount) String() string {
	c := int64(a)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Decimal returns the amount as a shopspring decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Float64 returns an approximate float for display-only consumers such as
// spreadsheet cells. Never use it for arithmetic.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// Sum adds amounts as integers.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// Percent returns round(part / whole * 100), or 0 when whole is zero.
func Percent(part, whole Amount) int {
	if whole == 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).IntPart())
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string. Bare JSON numbers are accepted too
// for lenient clients, but are parsed from their literal text so no float
// rounding is introduced.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = 0
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Value implements driver.Valuer; the database receives the decimal text.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns read as text.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case string:
		p, err := Parse(v)
		if err != nil {
			return err
		}
		*a = p
		return nil
	case []byte:
		return a.Scan(string(v))
	case int64:
		*a = Amount(v * 100)
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
}
