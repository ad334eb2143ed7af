package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionlab/internal/models"
	"optionlab/internal/positive"
)

func TestStepNextStopsAtExpiration(t *testing.T) {
	s := Step{
		StepSize:      positive.MustNew(1),
		Unit:          models.UnitDay,
		TimeRemaining: positive.MustNew(1.0 / 365),
		Value:         positive.MustNew(100),
	}

	next, err := s.Next(101)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Index)
	assert.True(t, next.TimeRemaining.IsZero())

	_, err = next.Next(102)
	assert.Error(t, err)
}

func TestStepNextClampsNegativeValues(t *testing.T) {
	s := Step{
		StepSize:      positive.MustNew(1),
		Unit:          models.UnitDay,
		TimeRemaining: positive.MustNew(0.5),
		Value:         positive.MustNew(100),
	}
	next, err := s.Next(-4)
	require.NoError(t, err)
	assert.True(t, next.Value.IsZero())
}

func TestRescaleVolatility(t *testing.T) {
	daily := positive.MustNew(0.01)
	annual := RescaleVolatility(daily, models.UnitDay, models.UnitYear)
	assert.InDelta(t, 0.01*math.Sqrt(365), annual.Float64(), 1e-12)

	back := RescaleVolatility(annual, models.UnitYear, models.UnitDay)
	assert.InDelta(t, 0.01, back.Float64(), 1e-12)
}

func TestPathTailAverage(t *testing.T) {
	p := Path{}
	for i, v := range []float64{100, 102, 98, 104} {
		p.Steps = append(p.Steps, Step{Index: i, Value: positive.MustNew(v)})
	}

	assert.InDelta(t, 101, p.TailAverage(2), 1e-12)
	assert.InDelta(t, 101, p.TailAverage(0), 1e-12)  // whole path
	assert.InDelta(t, 101, p.TailAverage(10), 1e-12) // clamped to length

	min, max := p.MinMax()
	assert.Equal(t, 98.0, min)
	assert.Equal(t, 104.0, max)
}
