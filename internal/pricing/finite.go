package pricing

import (
	"optionlab/internal/models"
)

// fdStep is the symmetric finite-difference step applied to the input
// being bumped.
const fdStep = 1e-2

// PriceFunc prices a parameter set; NumericGreeks differentiates it.
type PriceFunc func(Params) (float64, error)

// NumericGreeks estimates the first-order Greeks of an arbitrary
// pricer by symmetric finite differences: two calls per first-order
// Greek, three for gamma. Used for exotics without closed-form
// sensitivities.
func NumericGreeks(price PriceFunc, p Params) (Greeks, error) {
	if err := p.validate(); err != nil {
		return Greeks{}, err
	}

	base, err := price(p)
	if err != nil {
		return Greeks{}, err
	}

	bump := func(mutate func(*Params, float64)) (float64, float64, error) {
		up, down := p, p
		mutate(&up, fdStep)
		mutate(&down, -fdStep)
		pu, err := price(up)
		if err != nil {
			return 0, 0, err
		}
		pd, err := price(down)
		if err != nil {
			return 0, 0, err
		}
		return pu, pd, nil
	}

	var g Greeks

	spotUp, spotDown, err := bump(func(q *Params, h float64) { q.Spot += h })
	if err != nil {
		return Greeks{}, err
	}
	g.Delta = (spotUp - spotDown) / (2 * fdStep)
	g.Gamma = (spotUp - 2*base + spotDown) / (fdStep * fdStep)

	volUp, volDown, err := bump(func(q *Params, h float64) { q.Volatility += h })
	if err != nil {
		return Greeks{}, err
	}
	g.Vega = (volUp - volDown) / (2 * fdStep)

	rateUp, rateDown, err := bump(func(q *Params, h float64) { q.Rate += h })
	if err != nil {
		return Greeks{}, err
	}
	g.Rho = (rateUp - rateDown) / (2 * fdStep)

	// Theta uses a step bounded by the remaining life so the downward
	// bump never crosses expiry, and is reported per calendar day.
	ht := fdStep
	if p.TimeToExpiry < ht {
		ht = p.TimeToExpiry / 2
	}
	if ht > 0 {
		up, down := p, p
		up.TimeToExpiry += ht
		down.TimeToExpiry -= ht
		pu, err := price(up)
		if err != nil {
			return Greeks{}, err
		}
		pd, err := price(down)
		if err != nil {
			return Greeks{}, err
		}
		g.Theta = -(pu - pd) / (2 * ht) / models.DaysPerYear
	}
	return g, nil
}
