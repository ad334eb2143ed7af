package pricing

import (
	"math"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
)

// BarrierPrice prices a barrier option by the reflection principle.
//
// The closed form covers the regular cases: down barriers on calls and
// up barriers on puts, with the barrier on the out-of-the-money side of
// the strike. Knock-in prices follow from in-out parity against the
// vanilla. Reverse barriers (barrier beyond the strike) have no simple
// reflection form and are delegated to the Monte-Carlo engine by the
// unified pricer.
func BarrierPrice(p Params, barrier models.ExoticParams) (float64, error) {
	if barrier.Variant != models.ExoticBarrier {
		return 0, apperrors.ErrInvalidExoticParams
	}
	if err := p.validate(); err != nil {
		return 0, err
	}
	h := barrier.BarrierLevel.Float64()
	if h <= 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidExoticParams, "barrier level must be positive")
	}

	vanilla, err := Price(p)
	if err != nil {
		return 0, err
	}
	rebate := barrier.Rebate.Float64()

	switch barrier.BarrierDirection {
	case models.BarrierDownAndOut, models.BarrierDownAndIn:
		if p.Style != models.StyleCall || h > p.Strike {
			return 0, apperrors.NewPricingError("barrier", "no closed form for this barrier configuration", nil)
		}
		out := 0.0
		if p.Spot > h {
			out = vanilla - reflectionTerm(p, h)
			if out < 0 {
				out = 0
			}
		}
		if barrier.BarrierDirection == models.BarrierDownAndOut {
			return out + rebate*knockProbabilityComplement(p, h, false), nil
		}
		return vanilla - out + rebate*knockProbabilityComplement(p, h, true), nil

	case models.BarrierUpAndOut, models.BarrierUpAndIn:
		if p.Style != models.StylePut || h < p.Strike {
			return 0, apperrors.NewPricingError("barrier", "no closed form for this barrier configuration", nil)
		}
		out := 0.0
		if p.Spot < h {
			out = vanilla - reflectionTerm(p, h)
			if out < 0 {
				out = 0
			}
		}
		if barrier.BarrierDirection == models.BarrierUpAndOut {
			return out + rebate*knockProbabilityComplement(p, h, false), nil
		}
		return vanilla - out + rebate*knockProbabilityComplement(p, h, true), nil
	}
	return 0, apperrors.ErrInvalidExoticParams
}

// reflectionTerm is (H/S)^(2*lambda) times the vanilla price started
// from the reflected spot H^2/S.
func reflectionTerm(p Params, h float64) float64 {
	lambda := (p.Rate - p.Yield + 0.5*p.Volatility*p.Volatility) / (p.Volatility * p.Volatility)
	reflected := p
	reflected.Spot = h * h / p.Spot
	rp, err := Price(reflected)
	if err != nil {
		return 0
	}
	return math.Pow(h/p.Spot, 2*lambda) * rp
}

// knockProbabilityComplement approximates the discounted probability
// weight applied to the rebate: survival weight for knock-out options,
// hit weight for knock-in ones.
func knockProbabilityComplement(p Params, h float64, knockedIn bool) float64 {
	if p.Volatility == 0 || p.TimeToExpiry == 0 {
		if knockedIn {
			return 0
		}
		return math.Exp(-p.Rate * p.TimeToExpiry)
	}
	sqrtT := math.Sqrt(p.TimeToExpiry)
	mu := p.Rate - p.Yield - 0.5*p.Volatility*p.Volatility
	logHS := math.Log(h / p.Spot)

	// First-passage probability of a drifting Brownian motion to the
	// barrier, by the reflection principle. logHS < 0 is a down
	// barrier, logHS > 0 an up barrier.
	var hit float64
	if logHS < 0 {
		hit = NormCDF((logHS-mu*p.TimeToExpiry)/(p.Volatility*sqrtT)) +
			math.Exp(2*mu*logHS/(p.Volatility*p.Volatility))*NormCDF((logHS+mu*p.TimeToExpiry)/(p.Volatility*sqrtT))
	} else {
		hit = NormCDF((-logHS+mu*p.TimeToExpiry)/(p.Volatility*sqrtT)) +
			math.Exp(2*mu*logHS/(p.Volatility*p.Volatility))*NormCDF((-logHS-mu*p.TimeToExpiry)/(p.Volatility*sqrtT))
	}
	if hit > 1 {
		hit = 1
	}
	if hit < 0 {
		hit = 0
	}
	disc := math.Exp(-p.Rate * p.TimeToExpiry)
	if knockedIn {
		return disc * hit
	}
	return disc * (1 - hit)
}
