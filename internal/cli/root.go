package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"optionlab/internal/config"
	"optionlab/internal/logging"
	"optionlab/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.CandleStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if candleStore, err := store.NewSQLiteStore(cfg.Data.DatabasePath); err != nil {
		logger.Warn().Err(err).Msg("candle store unavailable")
	} else {
		app.Store = candleStore
		logger.Debug().Str("path", cfg.Data.DatabasePath).Msg("candle store ready")
	}

	rootCmd := &cobra.Command{
		Use:   "optionlab",
		Short: "Option pricing, strategies and Monte-Carlo simulation",
		Long: `optionlab prices European, American and exotic options, analyses
multi-leg strategies and simulates them over stochastic price paths.

Use 'optionlab help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		Version: Version,
	}

	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newPriceCmd(app),
		newGreeksCmd(app),
		newIVCmd(app),
		newStrategyCmd(app),
		newSimulateCmd(app),
		newChainCmd(app),
		newVolCmd(app),
	)
	return rootCmd
}
