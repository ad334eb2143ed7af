package pricing

import (
	"context"
	"time"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

// Method selects a pricing engine.
type Method string

const (
	MethodClosedForm Method = "CLOSED_FORM"
	MethodMonteCarlo Method = "MONTE_CARLO"
)

// MCResult is the output of a Monte-Carlo pricing run. FailedPaths
// counts per-path pricing failures that were excluded from the average
// instead of aborting the run.
type MCResult struct {
	Price       positive.Value
	StdError    float64
	FailedPaths int
}

// MonteCarloEngine prices an option by simulation. Implemented by
// simulation.Simulator; declared here so pricing stays free of a
// dependency on the simulation package.
type MonteCarloEngine interface {
	MCOptionPrice(ctx context.Context, o models.Option) (MCResult, error)
}

// Engine is the unified pricing dispatch target.
type Engine struct {
	Method     Method
	MonteCarlo MonteCarloEngine
}

// ClosedForm returns an engine using the analytic pricers.
func ClosedForm() Engine {
	return Engine{Method: MethodClosedForm}
}

// MonteCarlo returns an engine using the given simulator.
func MonteCarlo(mc MonteCarloEngine) Engine {
	return Engine{Method: MethodMonteCarlo, MonteCarlo: mc}
}

// OptionPrice prices any supported option through the selected engine.
// The price is always unsigned; callers wanting signed P&L use position
// accounting.
func OptionPrice(ctx context.Context, o models.Option, eng Engine, now time.Time) (positive.Value, error) {
	switch eng.Method {
	case MethodClosedForm:
		return closedFormPrice(o, now)
	case MethodMonteCarlo:
		if eng.MonteCarlo == nil {
			return positive.Zero, apperrors.NewPricingError("monte_carlo", "no simulator configured", nil)
		}
		res, err := eng.MonteCarlo.MCOptionPrice(ctx, o)
		if err != nil {
			return positive.Zero, err
		}
		return res.Price, nil
	}
	return positive.Zero, apperrors.NewPricingError(string(eng.Method), "unknown pricing method", nil)
}

func closedFormPrice(o models.Option, now time.Time) (positive.Value, error) {
	p, err := ParamsFromOption(o, now)
	if err != nil {
		return positive.Zero, err
	}

	switch o.Kind {
	case models.KindEuropean, models.KindAmerican:
		// American options on non-dividend-paying underlyings price as
		// European; early-exercise premium is out of closed-form scope.
		unit, err := Price(p)
		if err != nil {
			return positive.Zero, err
		}
		return positive.FromFloat(unit * o.Quantity.Float64())
	case models.KindExotic:
		if o.Exotic == nil {
			return positive.Zero, apperrors.ErrInvalidExoticParams
		}
		if o.Exotic.Variant != models.ExoticBarrier {
			return positive.Zero, apperrors.NewPricingError("closed_form", "exotic variant requires the monte carlo engine", nil)
		}
		unit, err := BarrierPrice(p, *o.Exotic)
		if err != nil {
			return positive.Zero, err
		}
		if unit < 0 {
			unit = -unit
		}
		return positive.FromFloat(unit * o.Quantity.Float64())
	}
	return positive.Zero, apperrors.NewPricingError("closed_form", "unknown option kind", nil)
}

// OptionGreeks computes the position-signed Greeks of an option: long
// one unit Greeks scaled by quantity and side sign.
func OptionGreeks(o models.Option, now time.Time) (Greeks, error) {
	p, err := ParamsFromOption(o, now)
	if err != nil {
		return Greeks{}, err
	}

	var g Greeks
	if o.Kind == models.KindExotic {
		if o.Exotic == nil || o.Exotic.Variant != models.ExoticBarrier {
			return Greeks{}, &apperrors.GreeksError{Kind: "input", Reason: "no analytic greeks for this exotic variant"}
		}
		exotic := *o.Exotic
		g, err = NumericGreeks(func(q Params) (float64, error) {
			return BarrierPrice(q, exotic)
		}, p)
	} else {
		g, err = ComputeGreeks(p)
	}
	if err != nil {
		return Greeks{}, err
	}

	scale := o.Quantity.Float64() * o.Side.Sign()
	g.Delta *= scale
	g.Gamma *= scale
	g.Theta *= scale
	g.Vega *= scale
	g.Rho *= scale
	return g, nil
}
