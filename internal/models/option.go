package models

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/positive"
)

// ExoticParams carries the extra parameters of an exotic payoff. The
// populated fields must match the variant; NewOption enforces this.
type ExoticParams struct {
	Variant ExoticVariant

	// Barrier options
	BarrierLevel     positive.Value
	BarrierDirection BarrierDirection
	Rebate           positive.Value

	// Asian options: number of trailing steps in the averaging window.
	AveragingWindow int
}

// Option is an immutable description of a single option contract.
type Option struct {
	Kind          Kind
	Style         Style
	Side          Side
	Underlying    string
	Strike        positive.Value
	Expiration    ExpirationDate
	ImpliedVol    positive.Value
	Quantity      positive.Value
	Spot          positive.Value
	RiskFreeRate  decimal.Decimal
	DividendYield positive.Value
	Exotic        *ExoticParams
}

// NewOption validates and builds an option contract.
func NewOption(o Option) (Option, error) {
	if !o.Kind.Valid() {
		o.Kind = KindEuropean
	}
	if !o.Style.Valid() {
		return Option{}, apperrors.ErrInvalidStyleSide
	}
	if !o.Side.Valid() {
		return Option{}, apperrors.ErrInvalidStyleSide
	}
	if o.Strike.IsZero() {
		return Option{}, apperrors.ErrInvalidStrike
	}
	if o.Expiration.IsZero() {
		return Option{}, apperrors.ErrInvalidExpiration
	}
	if o.Quantity.IsZero() {
		o.Quantity = positive.One
	}
	if err := validateExotic(o); err != nil {
		return Option{}, err
	}
	return o, nil
}

func validateExotic(o Option) error {
	if o.Kind != KindExotic {
		if o.Exotic != nil {
			return apperrors.Wrap(apperrors.ErrInvalidExoticParams, "exotic params on non-exotic option")
		}
		return nil
	}
	if o.Exotic == nil {
		return apperrors.Wrap(apperrors.ErrInvalidExoticParams, "exotic option without params")
	}
	switch o.Exotic.Variant {
	case ExoticBarrier:
		if o.Exotic.BarrierLevel.IsZero() {
			return apperrors.Wrap(apperrors.ErrInvalidExoticParams, "barrier option without barrier level")
		}
		if !o.Exotic.BarrierDirection.Valid() {
			return apperrors.Wrap(apperrors.ErrInvalidExoticParams, "barrier option without direction")
		}
	case ExoticAsian:
		if o.Exotic.AveragingWindow <= 0 {
			return apperrors.Wrap(apperrors.ErrInvalidExoticParams, "asian option without averaging window")
		}
	default:
		return apperrors.Wrapf(apperrors.ErrInvalidExoticParams, "unknown exotic variant %q", o.Exotic.Variant)
	}
	return nil
}

// IntrinsicValue returns max(spot-strike, 0) for calls and
// max(strike-spot, 0) for puts.
func (o Option) IntrinsicValue(spot positive.Value) positive.Value {
	if o.Style == StyleCall {
		return spot.SubOrZero(o.Strike)
	}
	return o.Strike.SubOrZero(spot)
}

// PayoffAtExpiration returns intrinsic x quantity x side sign.
func (o Option) PayoffAtExpiration(spot positive.Value) decimal.Decimal {
	payoff := o.IntrinsicValue(spot).Mul(o.Quantity).Decimal()
	if o.Side == SideShort {
		return payoff.Neg()
	}
	return payoff
}

// TimeToExpiry returns the remaining life in years, clamped at zero.
func (o Option) TimeToExpiry(now time.Time) (positive.Value, error) {
	return o.Expiration.YearsFrom(now)
}

// WithSpot returns a copy of the option with a different spot.
func (o Option) WithSpot(spot positive.Value) Option {
	o.Spot = spot
	return o
}

// WithImpliedVol returns a copy of the option with a different
// implied volatility.
func (o Option) WithImpliedVol(iv positive.Value) Option {
	o.ImpliedVol = iv
	return o
}

// WithSide returns a copy of the option on the given side.
func (o Option) WithSide(side Side) Option {
	o.Side = side
	return o
}
