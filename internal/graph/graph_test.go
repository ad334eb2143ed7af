package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
)

func TestNewSeries2D(t *testing.T) {
	s, err := NewSeries2D("payoff", []float64{1, 2, 3}, []float64{4, 5, 6}, "")
	require.NoError(t, err)
	assert.Equal(t, ModeLines, s.Mode)
	assert.Equal(t, "payoff", s.Name)

	var metricsErr *apperrors.MetricsError
	_, err = NewSeries2D("bad", []float64{1, 2}, []float64{1}, ModeMarkers)
	assert.ErrorAs(t, err, &metricsErr)

	var multi MultiSeries2D
	multi.Add(s)
	multi.Add(s)
	assert.Len(t, multi.Series, 2)
}

func TestNewSurface3D(t *testing.T) {
	x := []float64{90, 100, 110}
	y := []float64{0.1, 0.2}
	z := [][]float64{{1, 2, 3}, {4, 5, 6}}

	s, err := NewSurface3D("surface", x, y, z)
	require.NoError(t, err)
	assert.Equal(t, z, s.Z)

	var metricsErr *apperrors.MetricsError
	_, err = NewSurface3D("bad", x, y, [][]float64{{1, 2, 3}})
	assert.ErrorAs(t, err, &metricsErr)

	_, err = NewSurface3D("bad", x, y, [][]float64{{1, 2, 3}, {4, 5}})
	assert.ErrorAs(t, err, &metricsErr)
}
