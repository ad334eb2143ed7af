package strategy

import (
	"math"
	"sort"

	"optionlab/internal/models"
	"optionlab/internal/positive"
)

const (
	// breakEvenGridPoints is the scan resolution before bisection.
	breakEvenGridPoints = 1000
	// breakEvenTolerance is the bisection refinement width.
	breakEvenTolerance = 1e-9
	// gridSearchPoints is the resolution of extremum search for custom
	// strategies.
	gridSearchPoints = 1000
	// ProfitRatioCap is the sentinel returned when the maximum loss is
	// zero or the maximum profit unbounded.
	ProfitRatioCap = 1e6
	// slopeEpsilon separates a flat terminal payoff from a sloped one.
	slopeEpsilon = 1e-9
)

// Extremum is a payoff extremum that may be unbounded, as the maximum
// profit of a long call is.
type Extremum struct {
	value     positive.Value
	unbounded bool
}

// BoundedExtremum wraps a finite extremum.
func BoundedExtremum(v positive.Value) Extremum {
	return Extremum{value: v}
}

// UnboundedExtremum marks an extremum with no finite bound.
func UnboundedExtremum() Extremum {
	return Extremum{unbounded: true}
}

// IsUnbounded reports whether the extremum has no finite bound.
func (e Extremum) IsUnbounded() bool {
	return e.unbounded
}

// Value returns the finite bound; ok is false when unbounded.
func (e Extremum) Value() (positive.Value, bool) {
	if e.unbounded {
		return positive.Zero, false
	}
	return e.value, true
}

func (e Extremum) String() string {
	if e.unbounded {
		return "unbounded"
	}
	return e.value.String()
}

// pnlAt is the float kernel behind the payoff queries.
func (s *Strategy) pnlAt(spot float64) float64 {
	if spot < 0 {
		spot = 0
	}
	v, _ := s.PnLAt(positive.MustNew(spot)).Float64()
	return v
}

// terminalSlope is the payoff slope as spot grows beyond every strike:
// signed call quantities plus the stock holding.
func (s *Strategy) terminalSlope() float64 {
	slope := 0.0
	for _, p := range s.positions {
		if p.Option.Style == models.StyleCall {
			slope += p.Option.Side.Sign() * p.Option.Quantity.Float64()
		}
	}
	if s.stock != nil {
		q, _ := s.stock.Quantity.Float64()
		slope += q
	}
	return slope
}

// strikes returns the sorted distinct strikes of the legs.
func (s *Strategy) strikes() []float64 {
	seen := map[float64]struct{}{}
	var out []float64
	for _, p := range s.positions {
		k := p.Option.Strike.Float64()
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Float64s(out)
	return out
}

// kinkValues evaluates the expiration P&L at every point where its
// slope can change: zero and each strike. For piecewise-linear
// payoffs the extrema live there.
func (s *Strategy) kinkValues() []float64 {
	values := []float64{s.pnlAt(0)}
	for _, k := range s.strikes() {
		values = append(values, s.pnlAt(k))
	}
	return values
}

// MaxProfit returns the largest achievable expiration profit, or
// unbounded when the payoff rises without limit.
func (s *Strategy) MaxProfit() Extremum {
	if s.terminalSlope() > slopeEpsilon {
		return UnboundedExtremum()
	}
	best := math.Inf(-1)
	for _, v := range s.candidateValues() {
		best = math.Max(best, v)
	}
	if best < 0 {
		best = 0
	}
	return BoundedExtremum(positive.MustNew(best))
}

// MaxLoss returns the largest achievable expiration loss as a
// magnitude, or unbounded when the payoff falls without limit.
func (s *Strategy) MaxLoss() Extremum {
	if s.terminalSlope() < -slopeEpsilon {
		return UnboundedExtremum()
	}
	worst := math.Inf(1)
	for _, v := range s.candidateValues() {
		worst = math.Min(worst, v)
	}
	if worst > 0 {
		worst = 0
	}
	return BoundedExtremum(positive.MustNew(-worst))
}

// candidateValues lists the P&L values an extremum can take. Named
// strategies have piecewise-linear payoffs whose extrema sit at the
// kinks; custom strategies additionally get a grid search across the
// strike envelope.
func (s *Strategy) candidateValues() []float64 {
	values := s.kinkValues()
	if s.kind != KindCustom {
		return values
	}
	lo, hi := s.envelope()
	step := (hi - lo) / gridSearchPoints
	for i := 0; i <= gridSearchPoints; i++ {
		values = append(values, s.pnlAt(lo+float64(i)*step))
	}
	return values
}

// envelope is the spot interval the searches scan: the strike range
// stretched by thirty percent each way, or a band around spot when no
// strikes exist.
func (s *Strategy) envelope() (float64, float64) {
	strikes := s.strikes()
	if len(strikes) == 0 {
		spot := s.spot.Float64()
		return spot * 0.5, spot * 1.5
	}
	lo := strikes[0] * 0.7
	hi := strikes[len(strikes)-1] * 1.3
	return lo, hi
}

// BreakEvenPoints returns the ordered spots where the expiration P&L
// crosses zero. Sign changes found by a grid scan are refined by
// bisection.
func (s *Strategy) BreakEvenPoints() []positive.Value {
	lo, hi := s.envelope()
	if lo > 0 {
		// A crossing may sit below the lowest strike.
		lo = 0
	}
	step := (hi - lo) / breakEvenGridPoints

	var roots []float64
	prevX := lo
	prevY := s.pnlAt(lo)
	for i := 1; i <= breakEvenGridPoints; i++ {
		x := lo + float64(i)*step
		y := s.pnlAt(x)
		switch {
		case prevY == 0:
			roots = append(roots, prevX)
		case prevY*y < 0:
			roots = append(roots, s.bisect(prevX, x))
		}
		prevX, prevY = x, y
	}
	if prevY == 0 {
		roots = append(roots, prevX)
	}

	sort.Float64s(roots)
	var out []positive.Value
	for _, r := range roots {
		if len(out) > 0 && math.Abs(out[len(out)-1].Float64()-r) < step/2 {
			continue
		}
		if r < 0 {
			r = 0
		}
		out = append(out, positive.MustNew(r))
	}
	return out
}

// bisect narrows a sign-changing interval down to the break-even
// tolerance.
func (s *Strategy) bisect(lo, hi float64) float64 {
	fLo := s.pnlAt(lo)
	for hi-lo > breakEvenTolerance {
		mid := (lo + hi) / 2
		fMid := s.pnlAt(mid)
		if fMid == 0 {
			return mid
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return (lo + hi) / 2
}

// ProfitArea returns the percentage of a representative spot interval
// over which the expiration P&L is positive, in [0, 100]. The interval
// spans the break-evens widened by one sigma of spot movement, or a
// band around spot when no break-evens exist.
func (s *Strategy) ProfitArea(stepSize positive.Value) positive.Value {
	breakEvens := s.BreakEvenPoints()
	var lo, hi float64
	if len(breakEvens) > 0 {
		width := s.sigmaWidth()
		lo = breakEvens[0].Float64() - width
		hi = breakEvens[len(breakEvens)-1].Float64() + width
	} else {
		spot := s.spot.Float64()
		lo, hi = spot*0.5, spot*1.5
	}
	if lo < 0 {
		lo = 0
	}
	step := stepSize.Float64()
	if step <= 0 || step > hi-lo {
		step = (hi - lo) / gridSearchPoints
	}

	total, profitable := 0, 0
	for x := lo; x <= hi; x += step {
		total++
		if s.pnlAt(x) > 0 {
			profitable++
		}
	}
	if total == 0 {
		return positive.Zero
	}
	pct := 100 * float64(profitable) / float64(total)
	if pct > 100 {
		pct = 100
	}
	return positive.MustNew(pct)
}

// sigmaWidth is one standard deviation of spot movement over the
// shortest remaining leg life, using the legs' mean implied vol.
func (s *Strategy) sigmaWidth() float64 {
	ivSum, n := 0.0, 0
	minT := math.Inf(1)
	for _, p := range s.positions {
		if !p.Option.ImpliedVol.IsZero() {
			ivSum += p.Option.ImpliedVol.Float64()
			n++
		}
		if t, err := p.Option.Expiration.YearsFrom(p.OpenedAt); err == nil {
			minT = math.Min(minT, t.Float64())
		}
	}
	if n == 0 || math.IsInf(minT, 1) {
		return s.spot.Float64() * 0.1
	}
	return s.spot.Float64() * (ivSum / float64(n)) * math.Sqrt(minT)
}

// ProfitRatio returns max profit over max loss. A zero max loss or an
// unbounded max profit yields the cap sentinel; an unbounded max loss
// against a bounded profit yields zero.
func (s *Strategy) ProfitRatio() positive.Value {
	profit := s.MaxProfit()
	loss := s.MaxLoss()

	if profit.IsUnbounded() {
		return positive.MustNew(ProfitRatioCap)
	}
	p, _ := profit.Value()
	if loss.IsUnbounded() {
		return positive.Zero
	}
	l, _ := loss.Value()
	if l.IsZero() {
		return positive.MustNew(ProfitRatioCap)
	}
	ratio, err := p.Div(l)
	if err != nil {
		return positive.MustNew(ProfitRatioCap)
	}
	return ratio.Min(positive.MustNew(ProfitRatioCap))
}
