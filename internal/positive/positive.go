// Package positive provides a non-negative decimal value type.
//
// Prices, strikes, volatilities, quantities and time spans are all
// physically non-negative; expressing them as Value moves the check to
// the construction boundary so downstream code never re-validates.
package positive

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "optionlab/internal/errors"
)

// Value wraps a decimal with the invariant value >= 0.
//
// The zero Value is valid and equal to Zero; it represents expired
// options, zero-volatility limits and the like.
type Value struct {
	dec decimal.Decimal
}

// Well-known constants.
var (
	Zero     = Value{decimal.Zero}
	One      = Value{decimal.NewFromInt(1)}
	Two      = Value{decimal.NewFromInt(2)}
	Ten      = Value{decimal.NewFromInt(10)}
	Hundred  = Value{decimal.NewFromInt(100)}
	Thousand = Value{decimal.NewFromInt(1000)}
)

// New creates a Value from a decimal. It fails with ErrNegativeValue if
// d is negative. Zero is allowed.
func New(d decimal.Decimal) (Value, error) {
	if d.IsNegative() {
		return Value{}, apperrors.Wrapf(apperrors.ErrNegativeValue, "cannot build positive value from %s", d)
	}
	return Value{d}, nil
}

// FromFloat creates a Value from a float64.
func FromFloat(f float64) (Value, error) {
	return New(decimal.NewFromFloat(f))
}

// FromString creates a Value from a decimal string.
func FromString(s string) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, apperrors.Wrap(err, "parsing positive value")
	}
	return New(d)
}

// MustNew creates a Value from a float64 and panics on a negative
// input. Intended for literals in tests and constants.
func MustNew(f float64) Value {
	v, err := FromFloat(f)
	if err != nil {
		panic(err)
	}
	return v
}

// Decimal returns the underlying decimal.
func (v Value) Decimal() decimal.Decimal {
	return v.dec
}

// Float64 returns the value as a float64. Precision may be lost; this
// is intended for the numeric kernels and plotting/IO boundaries.
func (v Value) Float64() float64 {
	return v.dec.InexactFloat64()
}

// Add returns v + o. Positivity is preserved.
func (v Value) Add(o Value) Value {
	return Value{v.dec.Add(o.dec)}
}

// Sub returns v - o as a plain signed decimal. Subtraction does not
// preserve positivity.
func (v Value) Sub(o Value) decimal.Decimal {
	return v.dec.Sub(o.dec)
}

// SubOrZero returns v - o, saturating at zero when o > v.
func (v Value) SubOrZero(o Value) Value {
	d := v.dec.Sub(o.dec)
	if d.IsNegative() {
		return Zero
	}
	return Value{d}
}

// Mul returns v * o. Positivity is preserved.
func (v Value) Mul(o Value) Value {
	return Value{v.dec.Mul(o.dec)}
}

// Div returns v / o. It fails with ErrDivisionByZero when o is zero.
func (v Value) Div(o Value) (Value, error) {
	if o.dec.IsZero() {
		return Value{}, apperrors.ErrDivisionByZero
	}
	return Value{v.dec.Div(o.dec)}, nil
}

// Cmp compares v and o: -1 if v < o, 0 if equal, +1 if v > o.
func (v Value) Cmp(o Value) int {
	return v.dec.Cmp(o.dec)
}

// Equal reports exact equality on the underlying decimal.
func (v Value) Equal(o Value) bool {
	return v.dec.Equal(o.dec)
}

// LessThan reports v < o.
func (v Value) LessThan(o Value) bool {
	return v.dec.LessThan(o.dec)
}

// GreaterThan reports v > o.
func (v Value) GreaterThan(o Value) bool {
	return v.dec.GreaterThan(o.dec)
}

// IsZero reports exact equality with Zero.
func (v Value) IsZero() bool {
	return v.dec.IsZero()
}

// Min returns the smaller of v and o.
func (v Value) Min(o Value) Value {
	if v.dec.LessThan(o.dec) {
		return v
	}
	return o
}

// Max returns the larger of v and o.
func (v Value) Max(o Value) Value {
	if v.dec.GreaterThan(o.dec) {
		return v
	}
	return o
}

func (v Value) String() string {
	return v.dec.String()
}

// MarshalJSON implements json.Marshaler; the value round-trips through
// the decimal string form.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.dec.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler and re-checks the invariant.
func (v *Value) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	nv, err := New(d)
	if err != nil {
		return fmt.Errorf("unmarshaling positive value: %w", err)
	}
	*v = nv
	return nil
}
