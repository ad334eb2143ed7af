package strategy

import (
	"fmt"
	"math"
	"sort"
	"time"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/pricing"
)

// AdjustmentConfig bounds what the planner may do.
type AdjustmentConfig struct {
	AllowNewLegs    bool
	AllowUnderlying bool
	// MaxLegResize caps, per leg, the quantity change as a fraction of
	// the current quantity. Zero means the leg may at most double or
	// fully close.
	MaxLegResize float64
	// FeePerContract estimates the transaction fee of a one-contract
	// change; zero uses the leg's own open fee.
	FeePerContract positive.Value
}

// ActionKind names one adjustment step.
type ActionKind string

const (
	ActionResizeLeg       ActionKind = "RESIZE_LEG"
	ActionTradeUnderlying ActionKind = "TRADE_UNDERLYING"
	ActionOpenLeg         ActionKind = "OPEN_LEG"
)

// Action is one step of an adjustment plan. QuantityDelta is signed in
// the leg's own side convention: positive grows the leg, negative
// shrinks it.
type Action struct {
	Kind          ActionKind
	LegIndex      int // -1 for underlying or new legs
	Description   string
	QuantityDelta float64
	DeltaImpact   float64
	Cost          float64
}

// Plan is the planner's output: ordered actions, total estimated cost
// and the delta gap left unfilled.
type Plan struct {
	NoAdjustmentNeeded bool
	Actions            []Action
	EstimatedCost      positive.Value
	ResidualDelta      float64
}

// candidate pairs a possible action with its efficiency.
type candidate struct {
	action       Action
	deltaPerUnit float64
	costPerUnit  float64
	maxUnits     float64
}

// OptimizedAdjustmentPlan finds a cheap set of quantity changes that
// brings the portfolio delta within tol of the target. Existing legs
// and, when allowed, the underlying are used greedily by delta moved
// per unit cost; a new at-the-money leg is added only when the first
// pass leaves a residual and config permits it.
func (s *Strategy) OptimizedAdjustmentPlan(now time.Time, cfg AdjustmentConfig, targetDelta, tol float64) (Plan, error) {
	g, err := s.PortfolioGreeks(now)
	if err != nil {
		return Plan{}, err
	}
	gap := targetDelta - g.Delta
	if math.Abs(gap) <= tol {
		return Plan{NoAdjustmentNeeded: true, ResidualDelta: gap}, nil
	}

	candidates, err := s.adjustmentCandidates(now, cfg)
	if err != nil {
		return Plan{}, err
	}
	sort.Slice(candidates, func(i, j int) bool {
		return efficiency(candidates[i]) > efficiency(candidates[j])
	})

	plan := Plan{}
	cost := 0.0
	for _, c := range candidates {
		if math.Abs(gap) <= tol {
			break
		}
		// Only candidates moving delta toward the target help.
		if c.deltaPerUnit == 0 || math.Signbit(c.deltaPerUnit) != math.Signbit(gap) {
			continue
		}
		units := math.Min(math.Abs(gap/c.deltaPerUnit), c.maxUnits)
		if units <= 0 {
			continue
		}
		act := c.action
		act.QuantityDelta *= units
		act.DeltaImpact = c.deltaPerUnit * units
		act.Cost = c.costPerUnit * units
		plan.Actions = append(plan.Actions, act)
		cost += act.Cost
		gap -= act.DeltaImpact
	}

	if math.Abs(gap) > tol && cfg.AllowNewLegs {
		act, impact, legCost, err := s.newLegAction(now, cfg, gap)
		if err == nil {
			plan.Actions = append(plan.Actions, act)
			cost += legCost
			gap -= impact
		}
	}

	plan.EstimatedCost, err = positive.FromFloat(cost)
	if err != nil {
		return Plan{}, err
	}
	plan.ResidualDelta = gap
	return plan, nil
}

func efficiency(c candidate) float64 {
	if c.costPerUnit <= 0 {
		return math.Abs(c.deltaPerUnit) * 1e9
	}
	return math.Abs(c.deltaPerUnit) / c.costPerUnit
}

// adjustmentCandidates lists per-leg resizes in both directions plus,
// when allowed, an underlying trade in both directions.
func (s *Strategy) adjustmentCandidates(now time.Time, cfg AdjustmentConfig) ([]candidate, error) {
	resize := cfg.MaxLegResize
	if resize <= 0 {
		resize = 1
	}

	var out []candidate
	for i, p := range s.positions {
		if p.IsClosed() {
			continue
		}
		unit := p.Option
		unit.Quantity = positive.One
		g, err := pricing.OptionGreeks(unit, now)
		if err != nil {
			return nil, err
		}
		fee := cfg.FeePerContract.Float64()
		if fee == 0 {
			fee = p.OpenFee.Float64()
		}
		costPerUnit := fee + p.Premium.Float64()
		maxUnits := p.Option.Quantity.Float64() * resize

		for _, dir := range []float64{1, -1} {
			out = append(out, candidate{
				action: Action{
					Kind:          ActionResizeLeg,
					LegIndex:      i,
					Description:   resizeDescription(p, dir),
					QuantityDelta: dir,
				},
				deltaPerUnit: g.Delta * dir,
				costPerUnit:  costPerUnit,
				maxUnits:     maxUnits,
			})
		}
	}

	if cfg.AllowUnderlying {
		for _, dir := range []float64{1, -1} {
			verb := "buy"
			if dir < 0 {
				verb = "sell"
			}
			out = append(out, candidate{
				action: Action{
					Kind:          ActionTradeUnderlying,
					LegIndex:      -1,
					Description:   fmt.Sprintf("%s underlying %s", verb, s.underlying),
					QuantityDelta: dir,
				},
				deltaPerUnit: dir,
				costPerUnit:  cfg.FeePerContract.Float64(),
				maxUnits:     math.Inf(1),
			})
		}
	}
	return out, nil
}

func resizeDescription(p models.Position, dir float64) string {
	verb := "grow"
	if dir < 0 {
		verb = "shrink"
	}
	return fmt.Sprintf("%s %s %s @ %s", verb, p.Option.Side, p.Option.Style, p.Option.Strike)
}

// newLegAction opens an at-the-money option sized to absorb the
// remaining gap: a long call for positive gaps, a long put for
// negative ones.
func (s *Strategy) newLegAction(now time.Time, cfg AdjustmentConfig, gap float64) (Action, float64, float64, error) {
	style := models.StyleCall
	if gap < 0 {
		style = models.StylePut
	}
	template := s.positions[0].Option
	opt, err := models.NewOption(models.Option{
		Kind:          models.KindEuropean,
		Style:         style,
		Side:          models.SideLong,
		Underlying:    s.underlying,
		Strike:        s.spot,
		Expiration:    template.Expiration,
		ImpliedVol:    template.ImpliedVol,
		Spot:          s.spot,
		RiskFreeRate:  template.RiskFreeRate,
		DividendYield: template.DividendYield,
	})
	if err != nil {
		return Action{}, 0, 0, err
	}
	g, err := pricing.OptionGreeks(opt, now)
	if err != nil {
		return Action{}, 0, 0, err
	}
	if g.Delta == 0 {
		return Action{}, 0, 0, &apperrors.GreeksError{Kind: "input", Reason: "candidate leg has zero delta"}
	}
	units := math.Abs(gap / g.Delta)
	impact := g.Delta * units

	p, err := pricing.ParamsFromOption(opt, now)
	if err != nil {
		return Action{}, 0, 0, err
	}
	premium, err := pricing.Price(p)
	if err != nil {
		return Action{}, 0, 0, err
	}
	cost := units * (premium + cfg.FeePerContract.Float64())

	return Action{
		Kind:          ActionOpenLeg,
		LegIndex:      -1,
		Description:   fmt.Sprintf("open long %s @ %s", style, s.spot),
		QuantityDelta: units,
		DeltaImpact:   impact,
		Cost:          cost,
	}, impact, cost, nil
}
