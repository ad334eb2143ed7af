// Package graph holds plot-ready data containers. Nothing here
// renders; consumers feed the series to whatever front-end they use.
package graph

import (
	apperrors "optionlab/internal/errors"
)

// Mode hints how a series wants to be drawn.
type Mode string

const (
	ModeLines           Mode = "lines"
	ModeMarkers         Mode = "markers"
	ModeLinesAndMarkers Mode = "lines+markers"
)

// Series2D is one named x/y trace.
type Series2D struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	Mode Mode      `json:"mode"`
}

// NewSeries2D validates the trace lengths and builds a series.
func NewSeries2D(name string, x, y []float64, mode Mode) (Series2D, error) {
	if len(x) != len(y) {
		return Series2D{}, &apperrors.MetricsError{Container: "series", Reason: "x and y lengths differ"}
	}
	if mode == "" {
		mode = ModeLines
	}
	return Series2D{Name: name, X: x, Y: y, Mode: mode}, nil
}

// MultiSeries2D is a set of traces sharing one canvas.
type MultiSeries2D struct {
	Title  string     `json:"title"`
	Series []Series2D `json:"series"`
}

// Add appends a trace.
func (m *MultiSeries2D) Add(s Series2D) {
	m.Series = append(m.Series, s)
}

// Surface3D is a z grid over x/y axes, z[i][j] belonging to y[i] and
// x[j].
type Surface3D struct {
	Name string      `json:"name"`
	X    []float64   `json:"x"`
	Y    []float64   `json:"y"`
	Z    [][]float64 `json:"z"`
}

// NewSurface3D validates the grid shape and builds a surface.
func NewSurface3D(name string, x, y []float64, z [][]float64) (Surface3D, error) {
	if len(z) != len(y) {
		return Surface3D{}, &apperrors.MetricsError{Container: "surface", Reason: "z row count must match y length"}
	}
	for _, row := range z {
		if len(row) != len(x) {
			return Surface3D{}, &apperrors.MetricsError{Container: "surface", Reason: "z column count must match x length"}
		}
	}
	return Surface3D{Name: name, X: x, Y: y, Z: z}, nil
}

// Config carries axis labels and display hints alongside the data.
type Config struct {
	Title       string `json:"title"`
	XLabel      string `json:"x_label"`
	YLabel      string `json:"y_label"`
	ZLabel      string `json:"z_label,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ColorScheme string `json:"color_scheme,omitempty"`
	ShowLegend  bool   `json:"show_legend,omitempty"`
}
