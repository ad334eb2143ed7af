package volatility

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/simulation"
)

// syntheticCandles builds a close series with alternating log returns
// of +r and -r, whose sample volatility is exactly |r| (up to the
// sample correction).
func syntheticCandles(n int, r float64) []models.Candle {
	candles := make([]models.Candle, n)
	price := 100.0
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = models.Candle{Timestamp: ts, Close: price, Volume: 1000}
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		price *= math.Exp(sign * r)
		ts = ts.Add(24 * time.Hour)
	}
	return candles
}

func TestAnnualizedRoundTrip(t *testing.T) {
	daily := positive.MustNew(0.0125)
	annual := Annualized(daily, models.UnitDay)
	assert.InDelta(t, 0.0125*math.Sqrt(365), annual.Float64(), 1e-12)

	back := DeAnnualized(annual, models.UnitDay)
	assert.InDelta(t, daily.Float64(), back.Float64(), 1e-12)

	// Annualising a yearly vol is a no-op.
	assert.InDelta(t, 0.2, Annualized(positive.MustNew(0.2), models.UnitYear).Float64(), 1e-12)
}

func TestHistoricalEstimate(t *testing.T) {
	h := NewHistorical(20, models.UnitDay)

	est, err := h.Estimate(syntheticCandles(100, 0.01))
	require.NoError(t, err)
	// Alternating +-1% daily returns annualise close to 1% * sqrt(365).
	assert.InDelta(t, 0.01*math.Sqrt(365), est.Float64(), 0.01)

	_, err = h.Estimate(syntheticCandles(2, 0.01))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
}

func TestHistoricalRollingSeries(t *testing.T) {
	h := NewHistorical(20, models.UnitDay)
	candles := syntheticCandles(60, 0.01)

	series, err := h.Calculate(candles)
	require.NoError(t, err)
	require.Len(t, series, 60)

	// Warm-up prefix is zero, the rest is populated.
	for i := 0; i < 20; i++ {
		assert.Zero(t, series[i])
	}
	for i := 20; i < 60; i++ {
		assert.Positive(t, series[i])
	}

	_, err = NewHistorical(1, models.UnitDay).Calculate(candles)
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)

	_, err = h.Calculate(syntheticCandles(10, 0.01))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
}

func TestEWMASeries(t *testing.T) {
	e := NewEWMA(models.UnitDay)
	assert.Equal(t, DefaultEWMALambda, e.Lambda)

	candles := syntheticCandles(50, 0.01)
	series, err := e.Calculate(candles)
	require.NoError(t, err)
	require.Len(t, series, 50)

	// The first slot has no return behind it.
	assert.Zero(t, series[0])
	for i := 1; i < 50; i++ {
		assert.Positive(t, series[i])
	}

	// On a constant-magnitude return stream the filter settles at the
	// return's annualised level.
	assert.InDelta(t, 0.01*math.Sqrt(365), series[49], 0.02)

	e.Lambda = 1.5
	_, err = e.Calculate(candles)
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)
}

func TestGARCH11(t *testing.T) {
	g := &GARCH11{Omega: 1e-6, Alpha: 0.08, Beta: 0.90, Unit: models.UnitDay}
	assert.True(t, g.Stationary())

	longRun, err := g.LongRunVolatility()
	require.NoError(t, err)
	want := math.Sqrt(1e-6 / (1 - 0.08 - 0.90) * 365)
	assert.InDelta(t, want, longRun.Float64(), 1e-12)

	series, err := g.Calculate(syntheticCandles(50, 0.01))
	require.NoError(t, err)
	require.Len(t, series, 50)
	assert.Zero(t, series[0])
	for i := 1; i < 50; i++ {
		assert.Positive(t, series[i])
	}

	bad := &GARCH11{Omega: 1e-6, Alpha: 0.5, Beta: 0.6, Unit: models.UnitDay}
	assert.False(t, bad.Stationary())
	_, err = bad.LongRunVolatility()
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)

	negative := &GARCH11{Omega: -1, Unit: models.UnitDay}
	_, err = negative.Calculate(syntheticCandles(50, 0.01))
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)
}

func TestDiagnose(t *testing.T) {
	diag, err := Diagnose(syntheticCandles(100, 0.01), models.UnitDay)
	require.NoError(t, err)

	// Squared returns are constant at r^2, so the mean matches the
	// annualised variance and the spread collapses.
	assert.InDelta(t, 0.01*0.01*365, diag.MeanVariance, 1e-9)
	assert.InDelta(t, 0, diag.VolOfVol, 1e-9)
	assert.InDelta(t, diag.MeanVariance, diag.MaxVariance, 1e-9)

	_, err = Diagnose(nil, models.UnitDay)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientData)
}

func TestSimulateHestonVolatility(t *testing.T) {
	run := func(seed int64) []positive.Value {
		series, err := SimulateHestonVolatility(simulation.NewSeededWalker(seed), 2.0, 0.04, 0.3, 0.09, 1.0/252, 252)
		require.NoError(t, err)
		return series
	}

	a := run(7)
	require.Len(t, a, 253)
	assert.InDelta(t, 0.3, a[0].Float64(), 1e-12)

	// Same seed, same series; a different seed diverges.
	b := run(7)
	for i := range a {
		assert.True(t, a[i].Equal(b[i]), "step %d", i)
	}
	c := run(8)
	diverged := false
	for i := range a {
		if !a[i].Equal(c[i]) {
			diverged = true
			break
		}
	}
	assert.True(t, diverged)
}

func TestSimulateHestonVolatilityMeanReverts(t *testing.T) {
	// With xi = 0 the recursion is deterministic and contracts onto the
	// long-run level.
	series, err := SimulateHestonVolatility(simulation.NewSeededWalker(1), 3.0, 0.04, 0, 0.09, 1.0/252, 2520)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, series[len(series)-1].Float64(), 1e-6)

	// Monotone approach from above.
	for i := 1; i < len(series); i++ {
		assert.LessOrEqual(t, series[i].Float64(), series[i-1].Float64())
	}
}

func TestSimulateHestonVolatilityRejectsBadInputs(t *testing.T) {
	w := simulation.NewSeededWalker(1)

	_, err := SimulateHestonVolatility(w, 2, 0.04, 0.3, 0.09, 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)

	_, err = SimulateHestonVolatility(w, 2, 0.04, 0.3, 0.09, 1.0/252, 0)
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)

	_, err = SimulateHestonVolatility(w, -1, 0.04, 0.3, 0.09, 1.0/252, 10)
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)

	_, err = SimulateHestonVolatility(w, 2, 0.04, 0.3, -0.09, 1.0/252, 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidVolatility)
}
