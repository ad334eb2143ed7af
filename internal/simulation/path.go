package simulation

import (
	"math"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

// RescaleVolatility converts a volatility quoted per one src period to
// the equivalent per one dst period: sigma scales with the square root
// of time.
func RescaleVolatility(sigma positive.Value, src, dst models.TimeUnit) positive.Value {
	factor := math.Sqrt(src.PeriodsPerYear() / dst.PeriodsPerYear())
	return positive.MustNew(sigma.Float64() * factor)
}

// Step is one point of a simulated path: the underlying value at a
// remaining time to expiration.
type Step struct {
	Index         int
	StepSize      positive.Value // in Unit
	Unit          models.TimeUnit
	TimeRemaining positive.Value // years
	Value         positive.Value
}

// DtYears is the step size converted to a year fraction.
func (s Step) DtYears() float64 {
	return s.StepSize.Float64() / s.Unit.PeriodsPerYear()
}

// Next produces the following step with the given underlying value.
// It fails once the expiration has been reached.
func (s Step) Next(value float64) (Step, error) {
	if s.TimeRemaining.IsZero() {
		return Step{}, apperrors.Wrap(apperrors.ErrInvalidExpiration, "path already at expiration")
	}
	if value < 0 {
		value = 0
	}
	remaining := s.TimeRemaining.Float64() - s.DtYears()
	if remaining < 0 {
		remaining = 0
	}
	return Step{
		Index:         s.Index + 1,
		StepSize:      s.StepSize,
		Unit:          s.Unit,
		TimeRemaining: positive.MustNew(remaining),
		Value:         positive.MustNew(value),
	}, nil
}

// Path is an ordered trajectory of the underlying through time. The
// first step holds the initial spot; the last has zero time remaining.
type Path struct {
	Steps []Step
}

// Len returns the number of steps including the initial one.
func (p Path) Len() int {
	return len(p.Steps)
}

// First returns the initial step.
func (p Path) First() Step {
	return p.Steps[0]
}

// Terminal returns the final step.
func (p Path) Terminal() Step {
	return p.Steps[len(p.Steps)-1]
}

// Values returns the underlying values along the path.
func (p Path) Values() []float64 {
	out := make([]float64, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Value.Float64()
	}
	return out
}

// MinMax returns the extreme underlying values along the path.
func (p Path) MinMax() (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, s := range p.Steps {
		v := s.Value.Float64()
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// TailAverage returns the mean underlying value over the last n steps.
func (p Path) TailAverage(n int) float64 {
	if n <= 0 || n > len(p.Steps) {
		n = len(p.Steps)
	}
	sum := 0.0
	for _, s := range p.Steps[len(p.Steps)-n:] {
		sum += s.Value.Float64()
	}
	return sum / float64(n)
}
