// Package pricing computes theoretical option prices and sensitivities.
//
// The kernels are pure functions of their inputs: rates and yields
// travel with the option, never with a shared market context. All
// internal math is float64; decimals are converted at the boundary.
package pricing

import (
	"math"
	"time"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

// Params are the scalar inputs of the Black-Scholes model.
type Params struct {
	Spot         float64
	Strike       float64
	TimeToExpiry float64 // years
	Volatility   float64
	Rate         float64
	Yield        float64
	Style        models.Style
}

// ParamsFromOption extracts pricing inputs from an option as seen at
// the given instant.
func ParamsFromOption(o models.Option, now time.Time) (Params, error) {
	t, err := o.TimeToExpiry(now)
	if err != nil {
		return Params{}, err
	}
	p := Params{
		Spot:         o.Spot.Float64(),
		Strike:       o.Strike.Float64(),
		TimeToExpiry: t.Float64(),
		Volatility:   o.ImpliedVol.Float64(),
		Rate:         o.RiskFreeRate.InexactFloat64(),
		Yield:        o.DividendYield.Float64(),
		Style:        o.Style,
	}
	return p, p.validate()
}

func (p Params) validate() error {
	if p.Spot <= 0 {
		return apperrors.Wrap(apperrors.ErrOutOfDomain, "spot must be positive")
	}
	if p.Strike <= 0 {
		return apperrors.ErrInvalidStrike
	}
	if p.TimeToExpiry < 0 {
		return &apperrors.InvalidTimeError{Time: p.TimeToExpiry, Reason: "negative time to expiry"}
	}
	if p.Volatility < 0 {
		return apperrors.ErrInvalidVolatility
	}
	if !p.Style.Valid() {
		return apperrors.ErrInvalidStyleSide
	}
	return nil
}

// degenerate reports whether the closed form collapses to a limit.
func (p Params) degenerate() bool {
	return p.TimeToExpiry == 0 || p.Volatility == 0
}

func (p Params) d1d2() (float64, float64) {
	sqrtT := math.Sqrt(p.TimeToExpiry)
	d1 := (math.Log(p.Spot/p.Strike) + (p.Rate-p.Yield+0.5*p.Volatility*p.Volatility)*p.TimeToExpiry) /
		(p.Volatility * sqrtT)
	return d1, d1 - p.Volatility*sqrtT
}

// intrinsic is the immediate-exercise value.
func (p Params) intrinsic() float64 {
	if p.Style == models.StyleCall {
		return math.Max(p.Spot-p.Strike, 0)
	}
	return math.Max(p.Strike-p.Spot, 0)
}

// zeroVolPrice is the sigma -> 0 limit: the discounted forward payoff.
func (p Params) zeroVolPrice() float64 {
	fwd := p.Spot*math.Exp(-p.Yield*p.TimeToExpiry) - p.Strike*math.Exp(-p.Rate*p.TimeToExpiry)
	if p.Style == models.StyleCall {
		return math.Max(fwd, 0)
	}
	return math.Max(-fwd, 0)
}

// forwardITM reports whether the discounted forward finishes in the
// money, which drives the indicator limits of the degenerate Greeks.
func (p Params) forwardITM() bool {
	fwd := p.Spot*math.Exp(-p.Yield*p.TimeToExpiry) - p.Strike*math.Exp(-p.Rate*p.TimeToExpiry)
	if p.Style == models.StyleCall {
		return fwd > 0
	}
	return fwd < 0
}

// Price returns the unsigned Black-Scholes price of a European option.
// Degenerate inputs fall back to their documented limits: intrinsic
// value at T=0 and the discounted forward payoff at sigma=0. Numerical
// noise below zero is clamped.
func Price(p Params) (float64, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	if p.TimeToExpiry == 0 {
		return p.intrinsic(), nil
	}
	if p.Volatility == 0 {
		return p.zeroVolPrice(), nil
	}

	d1, d2 := p.d1d2()
	discS := p.Spot * math.Exp(-p.Yield*p.TimeToExpiry)
	discK := p.Strike * math.Exp(-p.Rate*p.TimeToExpiry)

	var price float64
	if p.Style == models.StyleCall {
		price = discS*NormCDF(d1) - discK*NormCDF(d2)
	} else {
		price = discK*NormCDF(-d2) - discS*NormCDF(-d1)
	}
	if price < 0 {
		price = 0
	}
	return price, nil
}

// PriceOption prices a European option contract at the given instant.
// The result is unsigned and scaled by quantity; signed economics come
// from position accounting, not from the pricer.
func PriceOption(o models.Option, now time.Time) (positive.Value, error) {
	p, err := ParamsFromOption(o, now)
	if err != nil {
		return positive.Zero, err
	}
	unit, err := Price(p)
	if err != nil {
		return positive.Zero, err
	}
	return positive.FromFloat(unit * o.Quantity.Float64())
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
