// Package config provides configuration management for the analytics
// tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "optionlab/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Solver     SolverConfig     `mapstructure:"solver"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Market     MarketConfig     `mapstructure:"market"`
	Data       DataConfig       `mapstructure:"data"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	UI         UIConfig         `mapstructure:"ui"`
}

// SolverConfig holds implied-volatility solver settings.
type SolverConfig struct {
	PriceTolerance float64 `mapstructure:"price_tolerance"`
	SigmaTolerance float64 `mapstructure:"sigma_tolerance"`
	MaxIterations  int     `mapstructure:"max_iterations"`
}

// SimulationConfig holds Monte-Carlo defaults.
type SimulationConfig struct {
	Paths   int   `mapstructure:"paths"`
	Steps   int   `mapstructure:"steps"`
	Seed    int64 `mapstructure:"seed"`
	Workers int   `mapstructure:"workers"`
}

// MarketConfig holds default market parameters.
type MarketConfig struct {
	RiskFreeRate  float64 `mapstructure:"risk_free_rate"`
	DividendYield float64 `mapstructure:"dividend_yield"`
}

// DataConfig holds chain and candle data locations.
type DataConfig struct {
	ChainDir     string `mapstructure:"chain_dir"`
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// UIConfig holds output settings.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
	JSONOutput   bool `mapstructure:"json_output"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".optionlab"
	}
	return filepath.Join(home, ".config", "optionlab")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			PriceTolerance: 1e-8,
			SigmaTolerance: 1e-12,
			MaxIterations:  100,
		},
		Simulation: SimulationConfig{
			Paths: 10000,
			Steps: 100,
			Seed:  42,
		},
		Market: MarketConfig{
			RiskFreeRate: 0.05,
		},
		Data: DataConfig{
			ChainDir:     filepath.Join(DefaultConfigDir(), "chains"),
			DatabasePath: filepath.Join(DefaultConfigDir(), "optionlab.db"),
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		UI: UIConfig{
			ColorEnabled: true,
		},
	}
}

// Load reads config.toml from the directory, falling back to built-in
// defaults when the file is absent.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("solver.price_tolerance", cfg.Solver.PriceTolerance)
	v.SetDefault("solver.sigma_tolerance", cfg.Solver.SigmaTolerance)
	v.SetDefault("solver.max_iterations", cfg.Solver.MaxIterations)
	v.SetDefault("simulation.paths", cfg.Simulation.Paths)
	v.SetDefault("simulation.steps", cfg.Simulation.Steps)
	v.SetDefault("simulation.seed", cfg.Simulation.Seed)
	v.SetDefault("simulation.workers", cfg.Simulation.Workers)
	v.SetDefault("market.risk_free_rate", cfg.Market.RiskFreeRate)
	v.SetDefault("market.dividend_yield", cfg.Market.DividendYield)
	v.SetDefault("data.chain_dir", cfg.Data.ChainDir)
	v.SetDefault("data.database_path", cfg.Data.DatabasePath)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.path", cfg.Logging.Path)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("ui.json_output", cfg.UI.JSONOutput)
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Solver.PriceTolerance <= 0 || c.Solver.SigmaTolerance <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "solver tolerances must be positive")
	}
	if c.Solver.MaxIterations < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "solver max iterations must be at least 1")
	}
	if c.Simulation.Paths < 1 || c.Simulation.Steps < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "simulation paths and steps must be at least 1")
	}
	return nil
}
