package pricing

import (
	"math"

	"optionlab/internal/models"
)

// Greeks holds the five first-order sensitivities. Theta is reported
// per calendar day; vega and rho per 1.00 change in their input.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// HigherOrder holds the second- and third-order sensitivities.
type HigherOrder struct {
	Vanna float64 // dDelta / dSigma
	Vomma float64 // dVega / dSigma
	Charm float64 // dDelta / dTime
	Veta  float64 // dVega / dTime
	Color float64 // dGamma / dTime
}

// ComputeGreeks returns the analytic first-order Greeks for long one
// unit. Short positions negate; quantity scales; both are applied by
// the strategy layer.
func ComputeGreeks(p Params) (Greeks, error) {
	if err := p.validate(); err != nil {
		return Greeks{}, err
	}
	if p.degenerate() {
		return degenerateGreeks(p), nil
	}

	d1, d2 := p.d1d2()
	sqrtT := math.Sqrt(p.TimeToExpiry)
	expQT := math.Exp(-p.Yield * p.TimeToExpiry)
	expRT := math.Exp(-p.Rate * p.TimeToExpiry)
	pdf := NormPDF(d1)

	g := Greeks{
		Gamma: expQT * pdf / (p.Spot * p.Volatility * sqrtT),
		Vega:  p.Spot * expQT * pdf * sqrtT,
	}

	thetaCommon := -p.Spot * p.Volatility * expQT * pdf / (2 * sqrtT)
	if p.Style == models.StyleCall {
		g.Delta = expQT * NormCDF(d1)
		g.Theta = (thetaCommon - p.Rate*p.Strike*expRT*NormCDF(d2) + p.Yield*p.Spot*expQT*NormCDF(d1)) / models.DaysPerYear
		g.Rho = p.Strike * p.TimeToExpiry * expRT * NormCDF(d2)
	} else {
		g.Delta = -expQT * NormCDF(-d1)
		g.Theta = (thetaCommon + p.Rate*p.Strike*expRT*NormCDF(-d2) - p.Yield*p.Spot*expQT*NormCDF(-d1)) / models.DaysPerYear
		g.Rho = -p.Strike * p.TimeToExpiry * expRT * NormCDF(-d2)
	}
	return g, nil
}

// degenerateGreeks returns the documented finite limits at T=0 or
// sigma=0 instead of NaN.
func degenerateGreeks(p Params) Greeks {
	var g Greeks
	expQT := math.Exp(-p.Yield * p.TimeToExpiry)
	expRT := math.Exp(-p.Rate * p.TimeToExpiry)

	if p.TimeToExpiry == 0 {
		// Delta collapses to the exercise indicator.
		if p.Style == models.StyleCall {
			if p.Spot > p.Strike {
				g.Delta = 1
			}
		} else {
			if p.Spot < p.Strike {
				g.Delta = -1
			}
		}
		return g
	}

	// sigma = 0 with time remaining: the option is a forward on the
	// exercise indicator.
	if !p.forwardITM() {
		return g
	}
	if p.Style == models.StyleCall {
		g.Delta = expQT
		g.Theta = (-p.Rate*p.Strike*expRT + p.Yield*p.Spot*expQT) / models.DaysPerYear
		g.Rho = p.Strike * p.TimeToExpiry * expRT
	} else {
		g.Delta = -expQT
		g.Theta = (p.Rate*p.Strike*expRT - p.Yield*p.Spot*expQT) / models.DaysPerYear
		g.Rho = -p.Strike * p.TimeToExpiry * expRT
	}
	return g
}

// ComputeHigherOrder returns the higher-order Greeks for long one unit.
// At degenerate inputs every higher-order sensitivity collapses to
// zero.
func ComputeHigherOrder(p Params) (HigherOrder, error) {
	if err := p.validate(); err != nil {
		return HigherOrder{}, err
	}
	if p.degenerate() {
		return HigherOrder{}, nil
	}

	d1, d2 := p.d1d2()
	sqrtT := math.Sqrt(p.TimeToExpiry)
	expQT := math.Exp(-p.Yield * p.TimeToExpiry)
	pdf := NormPDF(d1)
	sigma := p.Volatility
	t := p.TimeToExpiry
	drift := p.Rate - p.Yield

	vega := p.Spot * expQT * pdf * sqrtT

	h := HigherOrder{
		Vanna: -expQT * pdf * d2 / sigma,
		Vomma: vega * d1 * d2 / sigma,
		Veta:  -vega * (p.Yield + drift*d1/(sigma*sqrtT) - (1+d1*d2)/(2*t)),
		Color: -expQT * pdf / (2 * p.Spot * t * sigma * sqrtT) *
			(2*p.Yield*t + 1 + (2*drift*t-d2*sigma*sqrtT)*d1/(sigma*sqrtT)),
	}

	charmTail := expQT * pdf * (2*drift*t - d2*sigma*sqrtT) / (2 * t * sigma * sqrtT)
	if p.Style == models.StyleCall {
		h.Charm = p.Yield*expQT*NormCDF(d1) - charmTail
	} else {
		h.Charm = -p.Yield*expQT*NormCDF(-d1) - charmTail
	}
	return h, nil
}
