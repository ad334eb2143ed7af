package simulation

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/pricing"
)

// Config describes a simulation run.
type Config struct {
	Title        string
	Size         int // steps per path
	InitialSpot  positive.Value
	TimeToExpiry positive.Value // years
	Unit         models.TimeUnit
	Walk         Walk
	NPaths       int
	Seed         int64
	Workers      int // 0 means GOMAXPROCS
}

// Simulator produces independent price paths under a chosen walk.
// Given the same seed it produces bit-identical paths across runs,
// irrespective of how they are scheduled.
type Simulator struct {
	cfg    Config
	logger zerolog.Logger
}

// New validates the configuration and builds a simulator.
func New(cfg Config, logger zerolog.Logger) (*Simulator, error) {
	if cfg.Size < 1 {
		return nil, &apperrors.SimulationError{Reason: "path size must be at least 1"}
	}
	if cfg.NPaths < 1 {
		return nil, &apperrors.SimulationError{Reason: "path count must be at least 1"}
	}
	if cfg.Walk == nil {
		return nil, &apperrors.SimulationError{Reason: "walk not configured"}
	}
	if err := cfg.Walk.Validate(); err != nil {
		return nil, &apperrors.SimulationError{Reason: "invalid walk parameters", Err: err}
	}
	if cfg.InitialSpot.IsZero() {
		return nil, &apperrors.SimulationError{Reason: "initial spot must be positive"}
	}
	if cfg.TimeToExpiry.IsZero() {
		return nil, &apperrors.SimulationError{Reason: "time to expiry must be positive"}
	}
	if cfg.Unit == "" {
		cfg.Unit = models.UnitDay
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Simulator{cfg: cfg, logger: logger}, nil
}

// Title returns the simulator's display title.
func (s *Simulator) Title() string {
	return s.cfg.Title
}

// Config returns a copy of the run configuration.
func (s *Simulator) Config() Config {
	return s.cfg
}

// initStep is the first step of every path.
func (s *Simulator) initStep() Step {
	t := s.cfg.TimeToExpiry.Float64()
	stepSize := t * s.cfg.Unit.PeriodsPerYear() / float64(s.cfg.Size)
	return Step{
		Index:         0,
		StepSize:      positive.MustNew(stepSize),
		Unit:          s.cfg.Unit,
		TimeRemaining: s.cfg.TimeToExpiry,
		Value:         s.cfg.InitialSpot,
	}
}

// Paths materialises all paths of one run, in path-index order.
// Cancellation is checked between paths; a cancelled run discards all
// partial results.
func (s *Simulator) Paths(ctx context.Context) ([]Path, error) {
	started := time.Now()
	paths := make([]Path, s.cfg.NPaths)

	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for i := 0; i < s.cfg.NPaths; i++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, apperrors.ErrSimulationCancelled
		default:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			path, err := s.generatePath(idx)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			paths[idx] = path
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	s.logger.Debug().
		Str("walk", s.cfg.Walk.Name()).
		Int("paths", s.cfg.NPaths).
		Int("steps", s.cfg.Size).
		Dur("elapsed", time.Since(started)).
		Msg("simulation run complete")
	return paths, nil
}

// generatePath builds one path from its own derived seed, so the
// result is independent of scheduling.
func (s *Simulator) generatePath(index int) (Path, error) {
	walker := NewSeededWalker(PathSeed(s.cfg.Seed, index))
	next := s.cfg.Walk.Generator(walker)

	steps := make([]Step, 0, s.cfg.Size+1)
	cur := s.initStep()
	steps = append(steps, cur)
	dt := cur.DtYears()

	for i := 0; i < s.cfg.Size; i++ {
		value := next(cur.Value.Float64(), dt)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Path{}, &apperrors.SimulationError{Reason: "walk produced a non-finite value"}
		}
		stepped, err := cur.Next(value)
		if err != nil {
			return Path{}, err
		}
		cur = stepped
		steps = append(steps, cur)
	}
	return Path{Steps: steps}, nil
}

// MCOptionPrice prices an option by Monte Carlo over one simulator
// run: discounted mean of per-path payoffs, with the standard error of
// the mean. Per-path failures are counted and excluded rather than
// aborting the run.
func (s *Simulator) MCOptionPrice(ctx context.Context, o models.Option) (pricing.MCResult, error) {
	paths, err := s.Paths(ctx)
	if err != nil {
		return pricing.MCResult{}, err
	}

	t := s.cfg.TimeToExpiry.Float64()
	discount := math.Exp(-o.RiskFreeRate.InexactFloat64() * t)
	quantity := o.Quantity.Float64()

	payoffs := make([]float64, 0, len(paths))
	failed := 0
	for _, path := range paths {
		payoff, err := pathPayoff(o, path)
		if err != nil || math.IsNaN(payoff) || math.IsInf(payoff, 0) {
			failed++
			continue
		}
		payoffs = append(payoffs, payoff*discount*quantity)
	}
	if len(payoffs) == 0 {
		return pricing.MCResult{}, &apperrors.SimulationError{Reason: "all paths failed to price"}
	}

	mean, err := stats.Mean(payoffs)
	if err != nil {
		return pricing.MCResult{}, &apperrors.SimulationError{Reason: "aggregating payoffs", Err: err}
	}
	stdDev, err := stats.StandardDeviationSample(payoffs)
	if err != nil {
		stdDev = 0
	}

	price, err := positive.FromFloat(math.Abs(mean))
	if err != nil {
		return pricing.MCResult{}, err
	}
	return pricing.MCResult{
		Price:       price,
		StdError:    stdDev / math.Sqrt(float64(len(payoffs))),
		FailedPaths: failed,
	}, nil
}

// pathPayoff evaluates the undiscounted unit payoff of an option over
// a full path.
func pathPayoff(o models.Option, path Path) (float64, error) {
	terminal := path.Terminal().Value.Float64()
	strike := o.Strike.Float64()

	vanilla := func(spot float64) float64 {
		if o.Style == models.StyleCall {
			return math.Max(spot-strike, 0)
		}
		return math.Max(strike-spot, 0)
	}

	if o.Kind != models.KindExotic {
		return vanilla(terminal), nil
	}
	if o.Exotic == nil {
		return 0, apperrors.ErrInvalidExoticParams
	}

	switch o.Exotic.Variant {
	case models.ExoticAsian:
		return vanilla(path.TailAverage(o.Exotic.AveragingWindow)), nil
	case models.ExoticBarrier:
		min, max := path.MinMax()
		level := o.Exotic.BarrierLevel.Float64()
		var crossed bool
		switch o.Exotic.BarrierDirection {
		case models.BarrierUpAndOut, models.BarrierUpAndIn:
			crossed = max >= level
		case models.BarrierDownAndOut, models.BarrierDownAndIn:
			crossed = min <= level
		}
		// Knock-out contracts survive while uncrossed; knock-in
		// contracts activate once crossed.
		knockOut := o.Exotic.BarrierDirection == models.BarrierUpAndOut ||
			o.Exotic.BarrierDirection == models.BarrierDownAndOut
		alive := crossed
		if knockOut {
			alive = !crossed
		}
		if alive {
			return vanilla(terminal), nil
		}
		return o.Exotic.Rebate.Float64(), nil
	}
	return 0, apperrors.ErrInvalidExoticParams
}
