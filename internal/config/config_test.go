package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1e-8, cfg.Solver.PriceTolerance)
	assert.Equal(t, 100, cfg.Solver.MaxIterations)
	assert.Equal(t, 10000, cfg.Simulation.Paths)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 0.05, cfg.Market.RiskFreeRate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.UI.ColorEnabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Solver.PriceTolerance = 0
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfigInvalid)

	cfg = Default()
	cfg.Solver.MaxIterations = 0
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfigInvalid)

	cfg = Default()
	cfg.Simulation.Paths = 0
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfigInvalid)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	toml := `
[simulation]
paths = 500
seed = 7

[market]
risk_free_rate = 0.03
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Simulation.Paths)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 0.03, cfg.Market.RiskFreeRate)

	// Untouched sections keep their defaults.
	assert.Equal(t, 100, cfg.Simulation.Steps)
	assert.Equal(t, 1e-8, cfg.Solver.PriceTolerance)
}

func TestLoadRejectsInvalidOverrides(t *testing.T) {
	dir := t.TempDir()
	toml := `
[simulation]
paths = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}
