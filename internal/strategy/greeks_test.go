package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/pricing"
)

func TestPortfolioGreeksAddUp(t *testing.T) {
	now := time.Now()
	long := testLeg(t, models.StyleCall, models.SideLong, 100, 4, 0)
	short := testLeg(t, models.StylePut, models.SideShort, 95, 2, 0)

	s, err := New(KindCustom, "ACME", positive.MustNew(100), long, short)
	require.NoError(t, err)

	total, err := s.PortfolioGreeks(now)
	require.NoError(t, err)

	g1, err := pricing.OptionGreeks(long.Option, now)
	require.NoError(t, err)
	g2, err := pricing.OptionGreeks(short.Option, now)
	require.NoError(t, err)

	assert.InDelta(t, g1.Delta+g2.Delta, total.Delta, 1e-12)
	assert.InDelta(t, g1.Gamma+g2.Gamma, total.Gamma, 1e-12)
	assert.InDelta(t, g1.Vega+g2.Vega, total.Vega, 1e-12)
	assert.InDelta(t, g1.Theta+g2.Theta, total.Theta, 1e-12)
	assert.InDelta(t, g1.Rho+g2.Rho, total.Rho, 1e-12)
}

func TestStockContributesDeltaOnly(t *testing.T) {
	now := time.Now()
	short := testLeg(t, models.StyleCall, models.SideShort, 105, 2, 0)

	bare, err := New(KindCustom, "ACME", positive.MustNew(100), short)
	require.NoError(t, err)
	covered, err := NewWithStock(KindCoveredCall, "ACME", positive.MustNew(100),
		&StockLeg{Quantity: decimal.NewFromInt(1), Basis: positive.MustNew(98)}, short)
	require.NoError(t, err)

	g1, err := bare.PortfolioGreeks(now)
	require.NoError(t, err)
	g2, err := covered.PortfolioGreeks(now)
	require.NoError(t, err)

	assert.InDelta(t, g1.Delta+1, g2.Delta, 1e-12)
	assert.Equal(t, g1.Gamma, g2.Gamma)
	assert.Equal(t, g1.Vega, g2.Vega)
}

func TestClosedLegsLeaveTheBook(t *testing.T) {
	now := time.Now()
	s, err := New(KindCustom, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 4, 0),
		testLeg(t, models.StylePut, models.SideLong, 95, 2, 0),
	)
	require.NoError(t, err)

	require.NoError(t, s.ClosePosition(1, now, positive.MustNew(1)))

	total, err := s.PortfolioGreeks(now)
	require.NoError(t, err)
	remaining, err := pricing.OptionGreeks(s.Positions()[0].Option, now)
	require.NoError(t, err)
	assert.InDelta(t, remaining.Delta, total.Delta, 1e-12)
}

func TestDeltaNeutralityChecks(t *testing.T) {
	now := time.Now()
	s, err := New(KindLongCall, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 4, 0),
	)
	require.NoError(t, err)

	neutral, err := s.IsDeltaNeutral(now, 0.01)
	require.NoError(t, err)
	assert.False(t, neutral)

	// An at-the-money call sits near half a delta.
	neutral, err = s.IsDeltaNeutral(now, 0.6)
	require.NoError(t, err)
	assert.True(t, neutral)

	gap, err := s.DeltaGap(now, 0)
	require.NoError(t, err)
	assert.Negative(t, gap)

	ok, err := s.MeetsGreekTargets(now, DeltaNeutral(), 0.01)
	require.NoError(t, err)
	assert.False(t, ok)

	g, err := s.PortfolioGreeks(now)
	require.NoError(t, err)
	ok, err = s.MeetsGreekTargets(now, GreekTargets{Delta: &g.Delta, Vega: &g.Vega}, 1e-9)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOptimizedAdjustmentPlan(t *testing.T) {
	now := time.Now()
	s, err := New(KindLongCall, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 4, 0.1),
	)
	require.NoError(t, err)

	// Already close enough: nothing to do.
	plan, err := s.OptimizedAdjustmentPlan(now, AdjustmentConfig{}, 0, 1)
	require.NoError(t, err)
	assert.True(t, plan.NoAdjustmentNeeded)
	assert.Empty(t, plan.Actions)

	// Shrinking the single leg can flatten delta exactly.
	plan, err = s.OptimizedAdjustmentPlan(now, AdjustmentConfig{MaxLegResize: 1}, 0, 0.01)
	require.NoError(t, err)
	assert.False(t, plan.NoAdjustmentNeeded)
	require.NotEmpty(t, plan.Actions)
	assert.Equal(t, ActionResizeLeg, plan.Actions[0].Kind)
	assert.Negative(t, plan.Actions[0].QuantityDelta)
	assert.InDelta(t, 0, plan.ResidualDelta, 0.01)

	// With the underlying allowed it is the cheapest delta source.
	plan, err = s.OptimizedAdjustmentPlan(now, AdjustmentConfig{
		AllowUnderlying: true,
	}, -0.5, 0.01)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Actions)
	assert.Equal(t, ActionTradeUnderlying, plan.Actions[0].Kind)
	assert.InDelta(t, 0, plan.ResidualDelta, 0.01)
}
