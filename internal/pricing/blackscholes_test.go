package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
)

// Reference inputs checked against hand-worked Black-Scholes values:
// S=100, K=100, T=0.25, sigma=0.20, r=5%, q=0.
func referenceParams(style models.Style) Params {
	return Params{
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 0.25,
		Volatility:   0.20,
		Rate:         0.05,
		Yield:        0,
		Style:        style,
	}
}

func TestPriceAtTheMoney(t *testing.T) {
	call, err := Price(referenceParams(models.StyleCall))
	require.NoError(t, err)
	assert.InDelta(t, 4.6150, call, 1e-3)

	put, err := Price(referenceParams(models.StylePut))
	require.NoError(t, err)
	assert.InDelta(t, 3.3726, put, 1e-3)

	// Parity against the discounted forward.
	assert.InDelta(t, 100-100*math.Exp(-0.05*0.25), call-put, 1e-9)
}

func TestGreeksAtTheMoney(t *testing.T) {
	g, err := ComputeGreeks(referenceParams(models.StyleCall))
	require.NoError(t, err)

	assert.InDelta(t, 0.5695, g.Delta, 1e-3)
	assert.InDelta(t, 0.039288, g.Gamma, 1e-4)
	assert.InDelta(t, 19.644, g.Vega, 1e-2)
	assert.InDelta(t, -0.02870, g.Theta, 1e-4)
	assert.InDelta(t, 13.083, g.Rho, 1e-2)

	p, err := ComputeGreeks(referenceParams(models.StylePut))
	require.NoError(t, err)
	assert.InDelta(t, g.Delta-1, p.Delta, 1e-9)
	assert.Equal(t, g.Gamma, p.Gamma)
	assert.Equal(t, g.Vega, p.Vega)
}

func TestPriceAtExpiry(t *testing.T) {
	p := referenceParams(models.StyleCall)
	p.TimeToExpiry = 0
	p.Spot = 110

	price, err := Price(p)
	require.NoError(t, err)
	assert.InDelta(t, 10, price, 1e-12)

	g, err := ComputeGreeks(p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Delta)
	assert.Equal(t, 0.0, g.Gamma)
	assert.Equal(t, 0.0, g.Vega)

	p.Spot = 90
	price, err = Price(p)
	require.NoError(t, err)
	assert.Zero(t, price)

	g, err = ComputeGreeks(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Delta)
}

func TestPriceAtZeroVolatility(t *testing.T) {
	p := referenceParams(models.StyleCall)
	p.Volatility = 0
	p.Spot = 110

	// A riskless forward position: discounted forward payoff.
	price, err := Price(p)
	require.NoError(t, err)
	want := 110 - 100*math.Exp(-0.05*0.25)
	assert.InDelta(t, want, price, 1e-12)

	p.Spot = 90
	price, err = Price(p)
	require.NoError(t, err)
	assert.Zero(t, price)
}

func TestPriceRejectsBadInputs(t *testing.T) {
	p := referenceParams(models.StyleCall)
	p.Spot = 0
	_, err := Price(p)
	assert.ErrorIs(t, err, apperrors.ErrOutOfDomain)

	p = referenceParams(models.StyleCall)
	p.Strike = -5
	_, err = Price(p)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStrike)

	p = referenceParams(models.StyleCall)
	p.TimeToExpiry = -0.1
	_, err = Price(p)
	var timeErr *apperrors.InvalidTimeError
	assert.ErrorAs(t, err, &timeErr)

	p = referenceParams(models.StyleCall)
	p.Volatility = -0.2
	_, err = Price(p)
	assert.ErrorIs(t, err, apperrors.ErrInvalidVolatility)

	p = referenceParams("straddle")
	_, err = Price(p)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStyleSide)
}

func TestHigherOrderGreeksDegenerateToZero(t *testing.T) {
	p := referenceParams(models.StyleCall)
	p.TimeToExpiry = 0
	h, err := ComputeHigherOrder(p)
	require.NoError(t, err)
	assert.Equal(t, HigherOrder{}, h)

	p = referenceParams(models.StyleCall)
	h, err = ComputeHigherOrder(p)
	require.NoError(t, err)
	// At the money vomma is small but vanna is clearly negative for
	// d2 > 0.
	assert.Negative(t, h.Vanna)
}

func TestNumericGreeksMatchAnalytic(t *testing.T) {
	p := referenceParams(models.StyleCall)
	analytic, err := ComputeGreeks(p)
	require.NoError(t, err)

	numeric, err := NumericGreeks(Price, p)
	require.NoError(t, err)

	assert.InDelta(t, analytic.Delta, numeric.Delta, 1e-4)
	assert.InDelta(t, analytic.Gamma, numeric.Gamma, 1e-4)
	assert.InDelta(t, analytic.Vega, numeric.Vega, 1e-2)
	assert.InDelta(t, analytic.Theta, numeric.Theta, 1e-4)
	assert.InDelta(t, analytic.Rho, numeric.Rho, 1e-2)
}
