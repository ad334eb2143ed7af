package strategy

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/simulation"
)

func testSim(t *testing.T, nPaths int, seed int64) *simulation.Simulator {
	t.Helper()
	sim, err := simulation.New(simulation.Config{
		Size:         30,
		InitialSpot:  positive.MustNew(100),
		TimeToExpiry: positive.MustNew(30.0 / 365),
		Walk:         simulation.GeometricBrownian{Drift: 0.05, Volatility: 0.25},
		NPaths:       nPaths,
		Seed:         seed,
	}, zerolog.Nop())
	require.NoError(t, err)
	return sim
}

func TestSimulateHoldToExpiration(t *testing.T) {
	s, err := New(KindLongStraddle, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 4, 0),
		testLeg(t, models.StylePut, models.SideLong, 100, 3, 0),
	)
	require.NoError(t, err)

	stats, err := s.Simulate(context.Background(), testSim(t, 200, 11), Expiration{})
	require.NoError(t, err)

	assert.Equal(t, 200, stats.Paths)
	require.Len(t, stats.Records, 200)
	assert.Equal(t, 200, stats.ExitReasons[ExitExpiration])
	for i, r := range stats.Records {
		assert.Equal(t, i, r.PathIndex)
		assert.Equal(t, 30, r.StepIndex)
		assert.Equal(t, ExitExpiration, r.Reason)
	}
	assert.GreaterOrEqual(t, stats.MaxProfit, stats.MeanPnL)
	assert.LessOrEqual(t, stats.MaxLoss, stats.MeanPnL)
	assert.InDelta(t, 1, stats.WinRate+stats.LossRate, 1e-9)
	assert.InDelta(t, 30, stats.MeanHolding, 1e-12)
}

func TestSimulateProfitTargetFiresImmediately(t *testing.T) {
	// Entry premium far below the model value makes the mark profitable
	// at the very first step.
	s, err := New(KindLongCall, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 0.01, 0),
	)
	require.NoError(t, err)

	stats, err := s.Simulate(context.Background(), testSim(t, 50, 3), ProfitPercent{Fraction: 1})
	require.NoError(t, err)

	assert.Equal(t, 50, stats.ExitReasons[ExitProfitTarget])
	for _, r := range stats.Records {
		assert.Equal(t, 0, r.StepIndex)
		assert.Positive(t, r.PnL)
	}
	assert.Zero(t, stats.MeanHolding)
}

func TestSimulatePolicyComposition(t *testing.T) {
	s, err := New(KindLongCall, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 3, 0),
	)
	require.NoError(t, err)

	policy := Or{
		ProfitPercent{Fraction: 0.5},
		LossPercent{Fraction: 0.5},
		Expiration{},
	}
	stats, err := s.Simulate(context.Background(), testSim(t, 300, 17), policy)
	require.NoError(t, err)

	total := 0
	for _, n := range stats.ExitReasons {
		total += n
	}
	assert.Equal(t, 300, total)
	// With symmetric triggers at half the premium some paths must leave
	// early in both directions.
	assert.Positive(t, stats.ExitReasons[ExitProfitTarget])
	assert.Positive(t, stats.ExitReasons[ExitLossLimit])
}

func TestSimulateDeterministicAcrossRuns(t *testing.T) {
	build := func() *Strategy {
		s, err := New(KindLongCall, "ACME", positive.MustNew(100),
			testLeg(t, models.StyleCall, models.SideLong, 100, 3, 0),
		)
		require.NoError(t, err)
		return s
	}

	a, err := build().Simulate(context.Background(), testSim(t, 100, 23), Expiration{})
	require.NoError(t, err)
	b, err := build().Simulate(context.Background(), testSim(t, 100, 23), Expiration{})
	require.NoError(t, err)

	assert.Equal(t, a.MeanPnL, b.MeanPnL)
	assert.Equal(t, a.StdDevPnL, b.StdDevPnL)
	for i := range a.Records {
		assert.Equal(t, a.Records[i].PnL, b.Records[i].PnL)
	}
}

func TestSimulateCancellation(t *testing.T) {
	s, err := New(KindLongCall, "ACME", positive.MustNew(100),
		testLeg(t, models.StyleCall, models.SideLong, 100, 3, 0),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Simulate(ctx, testSim(t, 1000, 5), Expiration{})
	assert.ErrorIs(t, err, apperrors.ErrSimulationCancelled)
}

func TestAndPolicyNeedsEveryCondition(t *testing.T) {
	mc := MarkContext{UnrealizedPnL: 10, InitialPremium: 5, LastStep: false}

	hit, _ := And{ProfitPercent{Fraction: 1}, Expiration{}}.Evaluate(mc)
	assert.False(t, hit)

	mc.LastStep = true
	hit, reason := And{ProfitPercent{Fraction: 1}, Expiration{}}.Evaluate(mc)
	assert.True(t, hit)
	assert.Equal(t, ExitProfitTarget, reason)
}
