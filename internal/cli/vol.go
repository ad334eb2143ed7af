package cli

import (
	"time"

	"github.com/spf13/cobra"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/logging"
	"optionlab/internal/models"
	"optionlab/internal/volatility"
)

func newVolCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vol <symbol>",
		Short: "Estimate volatility from stored OHLCV history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.Wrap(apperrors.ErrDatabaseError, "candle store unavailable")
			}
			symbol := args[0]
			timeframe, _ := cmd.Flags().GetString("timeframe")
			window, _ := cmd.Flags().GetInt("window")
			lookback, _ := cmd.Flags().GetInt("lookback-days")

			logger := logging.WithSymbol(app.Logger, symbol)
			to := time.Now().UTC()
			from := to.AddDate(0, 0, -lookback)
			candles, err := app.Store.GetCandles(cmd.Context(), symbol, timeframe, from, to)
			if err != nil {
				return err
			}
			if len(candles) < window+1 {
				return apperrors.ErrInsufficientData
			}
			logger.Debug().Int("candles", len(candles)).Msg("loaded history")

			hist := volatility.NewHistorical(window, models.UnitDay)
			sample, err := hist.Estimate(candles)
			if err != nil {
				return err
			}
			ewma := volatility.NewEWMA(models.UnitDay)
			ewmaSeries, err := ewma.Calculate(candles)
			if err != nil {
				return err
			}
			diag, err := volatility.Diagnose(candles, models.UnitDay)
			if err != nil {
				return err
			}

			latestEWMA := ewmaSeries[len(ewmaSeries)-1]
			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"symbol":        symbol,
					"candles":       len(candles),
					"historical":    sample.Float64(),
					"ewma":          latestEWMA,
					"mean_variance": diag.MeanVariance,
					"vol_of_vol":    diag.VolOfVol,
				})
			}
			out.Bold("%s volatility (%d candles, %s)", symbol, len(candles), timeframe)
			out.Printf("historical (annualised)  %.4f\n", sample.Float64())
			out.Printf("ewma latest              %.4f\n", latestEWMA)
			out.Printf("realised variance mean   %.4f\n", diag.MeanVariance)
			out.Printf("vol of vol               %.4f\n", diag.VolOfVol)
			return nil
		},
	}
	cmd.Flags().String("timeframe", "day", "candle timeframe key in the store")
	cmd.Flags().Int("window", 20, "rolling window length")
	cmd.Flags().Int("lookback-days", 365, "history to load")
	return cmd
}
