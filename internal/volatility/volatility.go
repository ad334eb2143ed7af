// Package volatility estimates and converts volatilities from return
// series. Estimators follow the same shape: a parameter struct with a
// Calculate method over candles, returning one value per input candle
// with the warm-up prefix left at zero.
package volatility

import (
	"math"

	"github.com/montanaflynn/stats"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/simulation"
)

// DefaultEWMALambda is the RiskMetrics decay factor for daily data.
const DefaultEWMALambda = 0.94

// Annualized converts a per-period volatility into annual terms.
func Annualized(sigma positive.Value, unit models.TimeUnit) positive.Value {
	return positive.MustNew(sigma.Float64() * math.Sqrt(unit.PeriodsPerYear()))
}

// DeAnnualized converts an annual volatility to per-period terms.
func DeAnnualized(sigma positive.Value, unit models.TimeUnit) positive.Value {
	return positive.MustNew(sigma.Float64() / math.Sqrt(unit.PeriodsPerYear()))
}

// Historical is the rolling close-to-close estimator.
type Historical struct {
	Window int
	Unit   models.TimeUnit
}

// NewHistorical creates a rolling estimator over the given window.
func NewHistorical(window int, unit models.TimeUnit) *Historical {
	return &Historical{Window: window, Unit: unit}
}

// Calculate returns the annualised rolling volatility series. Entries
// before the first full window are zero.
func (h *Historical) Calculate(candles []models.Candle) ([]float64, error) {
	if h.Window < 2 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfDomain, "window must be at least 2")
	}
	returns := models.LogReturns(candles)
	if len(returns) < h.Window {
		return nil, apperrors.ErrInsufficientData
	}

	scale := math.Sqrt(h.Unit.PeriodsPerYear())
	result := make([]float64, len(candles))
	for i := h.Window; i < len(candles); i++ {
		sd, err := stats.StandardDeviationSample(returns[i-h.Window : i])
		if err != nil {
			return nil, apperrors.Wrap(err, "rolling stddev")
		}
		result[i] = sd * scale
	}
	return result, nil
}

// Estimate returns a single annualised volatility over the whole
// sample.
func (h *Historical) Estimate(candles []models.Candle) (positive.Value, error) {
	returns := models.LogReturns(candles)
	if len(returns) < 2 {
		return positive.Zero, apperrors.ErrInsufficientData
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return positive.Zero, apperrors.Wrap(err, "sample stddev")
	}
	return positive.FromFloat(sd * math.Sqrt(h.Unit.PeriodsPerYear()))
}

// EWMA is the RiskMetrics exponentially weighted variance estimator.
type EWMA struct {
	Lambda float64
	Unit   models.TimeUnit
}

// NewEWMA creates an estimator with the RiskMetrics decay factor.
func NewEWMA(unit models.TimeUnit) *EWMA {
	return &EWMA{Lambda: DefaultEWMALambda, Unit: unit}
}

// Calculate returns the annualised EWMA volatility series, seeded with
// the sample variance of the first few returns.
func (e *EWMA) Calculate(candles []models.Candle) ([]float64, error) {
	if e.Lambda <= 0 || e.Lambda >= 1 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfDomain, "lambda must be in (0, 1)")
	}
	returns := models.LogReturns(candles)
	if len(returns) < 2 {
		return nil, apperrors.ErrInsufficientData
	}

	seed, err := stats.Variance(returns)
	if err != nil {
		return nil, apperrors.Wrap(err, "seed variance")
	}

	scale := math.Sqrt(e.Unit.PeriodsPerYear())
	result := make([]float64, len(candles))
	variance := seed
	for i, r := range returns {
		variance = e.Lambda*variance + (1-e.Lambda)*r*r
		result[i+1] = math.Sqrt(variance) * scale
	}
	return result, nil
}

// GARCH11 is the GARCH(1,1) conditional-variance filter with fixed
// coefficients. Omega is per-period variance.
type GARCH11 struct {
	Omega float64
	Alpha float64
	Beta  float64
	Unit  models.TimeUnit
}

// Stationary reports whether the filter has a finite long-run
// variance.
func (g *GARCH11) Stationary() bool {
	return g.Alpha+g.Beta < 1
}

// LongRunVolatility returns the annualised unconditional volatility.
// It errors when the filter is non-stationary.
func (g *GARCH11) LongRunVolatility() (positive.Value, error) {
	if !g.Stationary() {
		return positive.Zero, apperrors.Wrap(apperrors.ErrOutOfDomain, "alpha + beta must be below 1")
	}
	v := g.Omega / (1 - g.Alpha - g.Beta)
	return positive.FromFloat(math.Sqrt(v * g.Unit.PeriodsPerYear()))
}

// Calculate runs the variance recursion over the returns and yields
// the annualised conditional volatility series.
func (g *GARCH11) Calculate(candles []models.Candle) ([]float64, error) {
	if g.Omega < 0 || g.Alpha < 0 || g.Beta < 0 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfDomain, "coefficients must be non-negative")
	}
	returns := models.LogReturns(candles)
	if len(returns) < 2 {
		return nil, apperrors.ErrInsufficientData
	}

	seed, err := stats.Variance(returns)
	if err != nil {
		return nil, apperrors.Wrap(err, "seed variance")
	}

	scale := math.Sqrt(g.Unit.PeriodsPerYear())
	result := make([]float64, len(candles))
	variance := seed
	for i, r := range returns {
		variance = g.Omega + g.Alpha*r*r + g.Beta*variance
		result[i+1] = math.Sqrt(variance) * scale
	}
	return result, nil
}

// SimulateHestonVolatility integrates the Heston variance SDE on its
// own, without the coupled price process, and returns the volatility
// series including the starting point. The recursion is the same
// full-truncation scheme the price walk uses:
//
//	v_{t+1} = v_t + kappa*(theta - v_t+)*dt + xi*sqrt(v_t+ * dt)*Z
//
// with v+ = max(v, 0), so the variance never feeds back negative.
func SimulateHestonVolatility(w simulation.Walker, kappa, theta, xi, v0, dt float64, steps int) ([]positive.Value, error) {
	if dt <= 0 || steps < 1 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfDomain, "dt must be positive and steps at least 1")
	}
	if kappa < 0 {
		return nil, apperrors.Wrap(apperrors.ErrOutOfDomain, "reversion speed must be non-negative")
	}
	if theta < 0 || xi < 0 || v0 < 0 {
		return nil, apperrors.ErrInvalidVolatility
	}

	out := make([]positive.Value, 0, steps+1)
	v := v0
	out = append(out, positive.MustNew(math.Sqrt(v)))
	for i := 0; i < steps; i++ {
		vPos := math.Max(v, 0)
		v += kappa*(theta-vPos)*dt + xi*math.Sqrt(vPos*dt)*w.Normal()
		out = append(out, positive.MustNew(math.Sqrt(math.Max(v, 0))))
	}
	return out, nil
}

// VarianceDiagnostics summarises the realised variance behaviour of a
// return series, as a sanity check against stochastic-variance model
// parameters.
type VarianceDiagnostics struct {
	MeanVariance float64 // annualised mean of squared returns
	VolOfVol     float64 // annualised stddev of squared returns
	MaxVariance  float64 // annualised peak squared return
}

// Diagnose computes realised variance diagnostics over the candles.
func Diagnose(candles []models.Candle, unit models.TimeUnit) (VarianceDiagnostics, error) {
	returns := models.LogReturns(candles)
	if len(returns) < 2 {
		return VarianceDiagnostics{}, apperrors.ErrInsufficientData
	}

	periods := unit.PeriodsPerYear()
	squared := make([]float64, len(returns))
	for i, r := range returns {
		squared[i] = r * r * periods
	}

	mean, err := stats.Mean(squared)
	if err != nil {
		return VarianceDiagnostics{}, apperrors.Wrap(err, "mean variance")
	}
	sd, err := stats.StandardDeviationSample(squared)
	if err != nil {
		return VarianceDiagnostics{}, apperrors.Wrap(err, "vol of vol")
	}
	max, err := stats.Max(squared)
	if err != nil {
		return VarianceDiagnostics{}, apperrors.Wrap(err, "max variance")
	}
	return VarianceDiagnostics{
		MeanVariance: mean,
		VolOfVol:     sd,
		MaxVariance:  max,
	}, nil
}
