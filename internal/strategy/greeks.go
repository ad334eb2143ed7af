package strategy

import (
	"math"
	"time"

	"optionlab/internal/pricing"
)

// GreekTargets is a set of wanted portfolio Greeks; nil fields are
// unconstrained.
type GreekTargets struct {
	Delta *float64
	Gamma *float64
	Theta *float64
	Vega  *float64
	Rho   *float64
}

// DeltaNeutral is the target of a flat-delta book.
func DeltaNeutral() GreekTargets {
	zero := 0.0
	return GreekTargets{Delta: &zero}
}

// PortfolioGreeks sums the position-signed Greeks across legs. A stock
// holding contributes its share quantity to delta and nothing else.
func (s *Strategy) PortfolioGreeks(now time.Time) (pricing.Greeks, error) {
	var total pricing.Greeks
	for _, p := range s.positions {
		if p.IsClosed() {
			continue
		}
		g, err := pricing.OptionGreeks(p.Option, now)
		if err != nil {
			return pricing.Greeks{}, err
		}
		total.Delta += g.Delta
		total.Gamma += g.Gamma
		total.Theta += g.Theta
		total.Vega += g.Vega
		total.Rho += g.Rho
	}
	if s.stock != nil {
		q, _ := s.stock.Quantity.Float64()
		total.Delta += q
	}
	return total, nil
}

// DeltaGap returns the signed distance from the current portfolio
// delta to the target.
func (s *Strategy) DeltaGap(now time.Time, target float64) (float64, error) {
	g, err := s.PortfolioGreeks(now)
	if err != nil {
		return 0, err
	}
	return target - g.Delta, nil
}

// IsDeltaNeutral reports whether the portfolio delta is within tol of
// zero.
func (s *Strategy) IsDeltaNeutral(now time.Time, tol float64) (bool, error) {
	gap, err := s.DeltaGap(now, 0)
	if err != nil {
		return false, err
	}
	return math.Abs(gap) <= tol, nil
}

// MeetsGreekTargets reports whether every constrained Greek is within
// tol of its target.
func (s *Strategy) MeetsGreekTargets(now time.Time, targets GreekTargets, tol float64) (bool, error) {
	g, err := s.PortfolioGreeks(now)
	if err != nil {
		return false, err
	}
	checks := []struct {
		want *float64
		have float64
	}{
		{targets.Delta, g.Delta},
		{targets.Gamma, g.Gamma},
		{targets.Theta, g.Theta},
		{targets.Vega, g.Vega},
		{targets.Rho, g.Rho},
	}
	for _, c := range checks {
		if c.want != nil && math.Abs(c.have-*c.want) > tol {
			return false, nil
		}
	}
	return true, nil
}
