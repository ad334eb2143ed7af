package strategy

import (
	"optionlab/internal/graph"
)

// GraphData returns the expiration payoff curve across the break-even
// envelope as a plot series.
func (s *Strategy) GraphData() (graph.Series2D, error) {
	lo, hi := s.envelope()
	if lo < 0 {
		lo = 0
	}
	const points = 200
	step := (hi - lo) / points

	x := make([]float64, 0, points+1)
	y := make([]float64, 0, points+1)
	for i := 0; i <= points; i++ {
		spot := lo + float64(i)*step
		x = append(x, spot)
		y = append(y, s.pnlAt(spot))
	}
	return graph.NewSeries2D(string(s.kind)+" payoff", x, y, graph.ModeLines)
}

// GraphConfig returns display hints for the payoff curve.
func (s *Strategy) GraphConfig() graph.Config {
	return graph.Config{
		Title:  string(s.kind) + " on " + s.underlying,
		XLabel: "underlying price at expiration",
		YLabel: "p&l",
	}
}
