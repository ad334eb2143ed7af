package strategy

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/positive"
	"optionlab/internal/simulation"
)

// ExitReason tags why a simulated path closed the strategy.
type ExitReason string

const (
	ExitProfitTarget ExitReason = "PROFIT_TARGET"
	ExitLossLimit    ExitReason = "LOSS_LIMIT"
	ExitExpiration   ExitReason = "EXPIRATION"
)

// MarkContext is what an exit policy sees at one simulated step.
type MarkContext struct {
	Step           simulation.Step
	UnrealizedPnL  float64
	InitialPremium float64 // reference premium for percent policies
	LastStep       bool
}

// ExitPolicy decides whether to close the strategy at a step.
// Policies compose through Or and And.
type ExitPolicy interface {
	Evaluate(mc MarkContext) (bool, ExitReason)
}

// ProfitPercent closes once unrealized P&L reaches the given fraction
// of the initial premium.
type ProfitPercent struct {
	Fraction float64
}

func (p ProfitPercent) Evaluate(mc MarkContext) (bool, ExitReason) {
	return mc.UnrealizedPnL >= p.Fraction*mc.InitialPremium, ExitProfitTarget
}

// LossPercent closes once unrealized P&L falls to minus the given
// fraction of the initial premium.
type LossPercent struct {
	Fraction float64
}

func (l LossPercent) Evaluate(mc MarkContext) (bool, ExitReason) {
	return mc.UnrealizedPnL <= -l.Fraction*mc.InitialPremium, ExitLossLimit
}

// Expiration closes at the last step only.
type Expiration struct{}

func (Expiration) Evaluate(mc MarkContext) (bool, ExitReason) {
	return mc.LastStep, ExitExpiration
}

// Or triggers on the first policy that fires, in list order.
type Or []ExitPolicy

func (o Or) Evaluate(mc MarkContext) (bool, ExitReason) {
	for _, p := range o {
		if hit, reason := p.Evaluate(mc); hit {
			return true, reason
		}
	}
	return false, ""
}

// And triggers only when every policy fires at the same step. The
// reason of the first listed policy is reported.
type And []ExitPolicy

func (a And) Evaluate(mc MarkContext) (bool, ExitReason) {
	if len(a) == 0 {
		return false, ""
	}
	var first ExitReason
	for i, p := range a {
		hit, reason := p.Evaluate(mc)
		if !hit {
			return false, ""
		}
		if i == 0 {
			first = reason
		}
	}
	return true, first
}

// PathRecord is the per-path outcome of a simulated run.
type PathRecord struct {
	PathIndex int
	StepIndex int
	Spot      positive.Value
	PnL       float64
	Reason    ExitReason
}

// SimulationStats aggregates a simulated strategy run. Records keep
// path order regardless of worker scheduling.
type SimulationStats struct {
	Paths       int
	WinRate     float64
	LossRate    float64
	MeanPnL     float64
	StdDevPnL   float64
	MaxProfit   float64
	MaxLoss     float64
	MeanHolding float64 // mean exit step index
	ExitReasons map[ExitReason]int
	Records     []PathRecord
}

// Simulate walks the strategy through every path of one simulator run
// and closes it by the exit policy. Marks use each step's remaining
// time and the legs' own implied vols.
func (s *Strategy) Simulate(ctx context.Context, sim *simulation.Simulator, policy ExitPolicy) (SimulationStats, error) {
	if policy == nil {
		policy = Expiration{}
	}
	paths, err := sim.Paths(ctx)
	if err != nil {
		return SimulationStats{}, err
	}

	initialPremium := s.referencePremium()
	records := make([]PathRecord, len(paths))
	for i, path := range paths {
		rec, err := s.walkPath(i, path, policy, initialPremium)
		if err != nil {
			return SimulationStats{}, err
		}
		records[i] = rec
	}
	return aggregate(records), nil
}

// referencePremium is the base of percent exit policies: total premium
// paid for long legs, falling back to premium received on pure-credit
// strategies.
func (s *Strategy) referencePremium() float64 {
	paid, received := 0.0, 0.0
	for _, p := range s.positions {
		notional := p.Premium.Float64() * p.Option.Quantity.Float64()
		if p.Option.Side.Sign() > 0 {
			paid += notional
		} else {
			received += notional
		}
	}
	if paid > 0 {
		return paid
	}
	return received
}

func (s *Strategy) walkPath(index int, path simulation.Path, policy ExitPolicy, initialPremium float64) (PathRecord, error) {
	for j, step := range path.Steps {
		unrealized, err := s.markAtStep(step)
		if err != nil {
			return PathRecord{}, err
		}
		mc := MarkContext{
			Step:           step,
			UnrealizedPnL:  unrealized,
			InitialPremium: initialPremium,
			LastStep:       j == len(path.Steps)-1,
		}
		if hit, reason := policy.Evaluate(mc); hit {
			return PathRecord{
				PathIndex: index,
				StepIndex: j,
				Spot:      step.Value,
				PnL:       unrealized,
				Reason:    reason,
			}, nil
		}
	}

	// No step triggered; close at the final step.
	last := path.Terminal()
	pnl, _ := s.PnLAt(last.Value).Float64()
	return PathRecord{
		PathIndex: index,
		StepIndex: path.Len() - 1,
		Spot:      last.Value,
		PnL:       pnl,
		Reason:    ExitExpiration,
	}, nil
}

// markAtStep values the strategy at one simulated step: per-leg marks
// against entry premiums plus the entry cash flow already sunk.
func (s *Strategy) markAtStep(step simulation.Step) (float64, error) {
	tte := step.TimeRemaining.Float64()
	spot := step.Value.Float64()

	total := 0.0
	for _, p := range s.positions {
		if p.IsClosed() {
			continue
		}
		mark, err := markLeg(p, spot, tte, positive.Zero)
		if err != nil {
			return 0, apperrors.Wrap(err, "marking leg in simulation")
		}
		qty := p.Option.Quantity.Float64()
		total += (mark - p.Premium.Float64()) * qty * p.Option.Side.Sign()
		total -= p.TotalFees().Float64()
	}
	if s.stock != nil {
		q, _ := s.stock.Quantity.Float64()
		total += q * (spot - s.stock.Basis.Float64())
	}
	return total, nil
}

func aggregate(records []PathRecord) SimulationStats {
	out := SimulationStats{
		Paths:       len(records),
		ExitReasons: make(map[ExitReason]int),
		Records:     records,
		MaxProfit:   math.Inf(-1),
		MaxLoss:     math.Inf(1),
	}

	pnls := make([]float64, len(records))
	wins, losses := 0, 0
	holdingSum := 0.0
	for i, r := range records {
		pnls[i] = r.PnL
		if r.PnL > 0 {
			wins++
		} else if r.PnL < 0 {
			losses++
		}
		holdingSum += float64(r.StepIndex)
		out.ExitReasons[r.Reason]++
		out.MaxProfit = math.Max(out.MaxProfit, r.PnL)
		out.MaxLoss = math.Min(out.MaxLoss, r.PnL)
	}

	n := float64(len(records))
	if n == 0 {
		return out
	}
	out.WinRate = float64(wins) / n
	out.LossRate = float64(losses) / n
	out.MeanHolding = holdingSum / n
	if mean, err := stats.Mean(pnls); err == nil {
		out.MeanPnL = mean
	}
	if sd, err := stats.StandardDeviationSample(pnls); err == nil {
		out.StdDevPnL = sd
	}
	return out
}
