package simulation

import (
	"fmt"

	"optionlab/internal/graph"
)

// GraphData renders up to maxPaths of a run as a fan of step-indexed
// traces.
func (s *Simulator) GraphData(paths []Path, maxPaths int) (graph.MultiSeries2D, error) {
	if maxPaths <= 0 || maxPaths > len(paths) {
		maxPaths = len(paths)
	}
	out := graph.MultiSeries2D{Title: s.cfg.Title}
	for i := 0; i < maxPaths; i++ {
		values := paths[i].Values()
		x := make([]float64, len(values))
		for j := range x {
			x[j] = float64(j)
		}
		series, err := graph.NewSeries2D(fmt.Sprintf("path %d", i), x, values, graph.ModeLines)
		if err != nil {
			return graph.MultiSeries2D{}, err
		}
		out.Add(series)
	}
	return out, nil
}

// GraphConfig returns display hints for a path fan.
func (s *Simulator) GraphConfig() graph.Config {
	return graph.Config{
		Title:  s.cfg.Title,
		XLabel: "step",
		YLabel: "underlying price",
	}
}
