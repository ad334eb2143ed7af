package pricing

import (
	"math"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
)

// Implied-volatility solver guards.
const (
	ivSigmaFloor    = 1e-4
	ivSigmaCeil     = 5.0
	ivVegaEpsilon   = 1e-10
	ivTolPrice      = 1e-8
	ivTolSigma      = 1e-12
	ivMaxIterations = 100
)

// Solver carries the implied-volatility tolerances and iteration cap.
// The zero value is unusable; start from DefaultSolver or build one
// from loaded configuration.
type Solver struct {
	PriceTolerance float64
	SigmaTolerance float64
	MaxIterations  int
}

// DefaultSolver returns the built-in solver settings.
func DefaultSolver() Solver {
	return Solver{
		PriceTolerance: ivTolPrice,
		SigmaTolerance: ivTolSigma,
		MaxIterations:  ivMaxIterations,
	}
}

// IVResult reports the recovered volatility and the work it took.
type IVResult struct {
	Sigma      float64
	Iterations int
}

// ImpliedVolatility solves with the default tolerances. See
// Solver.ImpliedVolatility.
func ImpliedVolatility(p Params, marketPrice float64) (IVResult, error) {
	return DefaultSolver().ImpliedVolatility(p, marketPrice)
}

// ImpliedVolatility finds the sigma for which the Black-Scholes price
// of p equals marketPrice. The Volatility field of p is ignored.
//
// Newton-Raphson on sigma with vega as the derivative, seeded by the
// Brenner-Subrahmanyam approximation; when vega degenerates the solver
// switches to bisection over the sigma bracket. Exhaustion returns
// NoConvergenceError rather than a default.
func (s Solver) ImpliedVolatility(p Params, marketPrice float64) (IVResult, error) {
	if s.PriceTolerance <= 0 || s.SigmaTolerance <= 0 || s.MaxIterations < 1 {
		return IVResult{}, apperrors.Wrap(apperrors.ErrOutOfDomain, "solver tolerances must be positive and iterations at least 1")
	}
	if p.TimeToExpiry <= 0 {
		return IVResult{}, &apperrors.InvalidTimeError{Time: p.TimeToExpiry, Reason: "implied volatility requires time to expiry"}
	}
	if err := (Params{
		Spot:         p.Spot,
		Strike:       p.Strike,
		TimeToExpiry: p.TimeToExpiry,
		Volatility:   ivSigmaFloor,
		Rate:         p.Rate,
		Yield:        p.Yield,
		Style:        p.Style,
	}).validate(); err != nil {
		return IVResult{}, err
	}

	intrinsic := discountedIntrinsic(p)
	if marketPrice < intrinsic-s.PriceTolerance {
		return IVResult{}, &apperrors.InvalidPriceError{Price: marketPrice, Reason: "below intrinsic value"}
	}
	if upper := upperBound(p); marketPrice > upper+s.PriceTolerance {
		return IVResult{}, &apperrors.InvalidPriceError{Price: marketPrice, Reason: "above no-arbitrage bound"}
	}

	sigma := brennerSubrahmanyam(p, marketPrice)
	lo, hi := ivSigmaFloor, ivSigmaCeil

	for i := 1; i <= s.MaxIterations; i++ {
		trial := p
		trial.Volatility = sigma
		price, err := Price(trial)
		if err != nil {
			return IVResult{}, err
		}
		diff := price - marketPrice
		if math.Abs(diff) < s.PriceTolerance {
			return IVResult{Sigma: sigma, Iterations: i}, nil
		}

		// Keep the bisection bracket current regardless of which
		// method produced sigma.
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}

		g, err := ComputeGreeks(trial)
		if err != nil {
			return IVResult{}, err
		}

		var next float64
		if math.Abs(g.Vega) < ivVegaEpsilon {
			next = (lo + hi) / 2
		} else {
			next = sigma - diff/g.Vega
			if next <= lo || next >= hi {
				next = (lo + hi) / 2
			}
		}
		if math.Abs(next-sigma) < s.SigmaTolerance {
			return IVResult{Sigma: next, Iterations: i}, nil
		}
		sigma = next
	}
	return IVResult{}, &apperrors.NoConvergenceError{Iterations: s.MaxIterations, LastSigma: sigma}
}

// brennerSubrahmanyam seeds the solver with
// sqrt(2*pi/T) * |p - intrinsic| / S, clamped to the sigma bracket.
func brennerSubrahmanyam(p Params, marketPrice float64) float64 {
	seed := math.Sqrt(2*math.Pi/p.TimeToExpiry) * math.Abs(marketPrice-discountedIntrinsic(p)) / p.Spot
	if seed < ivSigmaFloor {
		return ivSigmaFloor
	}
	if seed > ivSigmaCeil {
		return ivSigmaCeil
	}
	return seed
}

// discountedIntrinsic is the sigma -> 0 lower bound of the price.
func discountedIntrinsic(p Params) float64 {
	return p.zeroVolPrice()
}

// upperBound is the no-arbitrage ceiling: the discounted underlying
// for a call, the discounted strike for a put.
func upperBound(p Params) float64 {
	if p.Style == models.StyleCall {
		return p.Spot * math.Exp(-p.Yield*p.TimeToExpiry)
	}
	return p.Strike * math.Exp(-p.Rate*p.TimeToExpiry)
}
