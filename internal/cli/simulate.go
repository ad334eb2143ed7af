package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/logging"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/simulation"
	"optionlab/pkg/utils"
)

// simulationFlags registers the Monte-Carlo run flags.
func simulationFlags(cmd *cobra.Command, app *App) {
	defaults := app.Config.Simulation
	cmd.Flags().Int("paths", defaults.Paths, "number of simulated paths")
	cmd.Flags().Int("steps", defaults.Steps, "steps per path")
	cmd.Flags().Int64("seed", defaults.Seed, "master random seed")
	cmd.Flags().Int("workers", defaults.Workers, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().String("walk", "gbm", "walk: brownian, gbm, logreturns, ou, jump, garch, heston, volofvol, telegraph")
	cmd.Flags().Float64("drift", 0, "walk drift")
	cmd.Flags().Float64("walk-vol", 0, "walk volatility override (defaults to the option's iv)")
}

// walkFromFlags builds the requested walk with the CLI's reduced
// parameter surface; richer parameterisations go through the library.
func walkFromFlags(cmd *cobra.Command, fallbackVol float64) (simulation.Walk, error) {
	name, _ := cmd.Flags().GetString("walk")
	drift, _ := cmd.Flags().GetFloat64("drift")
	vol, _ := cmd.Flags().GetFloat64("walk-vol")
	if vol == 0 {
		vol = fallbackVol
	}

	switch strings.ToLower(name) {
	case "brownian":
		return simulation.Brownian{Drift: drift, Volatility: vol}, nil
	case "gbm", "geometric":
		return simulation.GeometricBrownian{Drift: drift, Volatility: vol}, nil
	case "logreturns":
		return simulation.LogReturns{Mean: drift, Std: vol}, nil
	case "ou", "meanreverting":
		return simulation.OrnsteinUhlenbeck{ReversionSpeed: 2, LongTermLevel: 100, Volatility: vol}, nil
	case "jump", "merton":
		return simulation.JumpDiffusion{Drift: drift, Volatility: vol, JumpIntensity: 1, JumpMean: -0.05, JumpVol: 0.1}, nil
	case "garch":
		return simulation.GARCH{Omega: 0.00001, Alpha: 0.09, Beta: 0.89, Drift: drift, InitialVol: vol}, nil
	case "heston":
		return simulation.Heston{Drift: drift, ReversionSpeed: 2, LongTermVar: vol * vol, VolOfVol: 0.3, Correlation: -0.7, InitialVariance: vol * vol}, nil
	case "volofvol":
		return simulation.VolOfVol{Drift: drift, InitialVol: vol, VolMean: vol, VolReversion: 2, VolOfVol: 0.3}, nil
	case "telegraph":
		return simulation.Telegraph{Drift: drift, RateUp: 4, RateDown: 4, VolLow: vol * 0.5, VolHigh: vol * 1.5}, nil
	}
	return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown walk %q", name)
}

// simulatorFromFlags assembles a simulator over the given spot and
// horizon.
func simulatorFromFlags(app *App, cmd *cobra.Command, title string, spot, tte positive.Value, fallbackVol float64) (*simulation.Simulator, error) {
	paths, _ := cmd.Flags().GetInt("paths")
	steps, _ := cmd.Flags().GetInt("steps")
	seed, _ := cmd.Flags().GetInt64("seed")
	workers, _ := cmd.Flags().GetInt("workers")

	walk, err := walkFromFlags(cmd, fallbackVol)
	if err != nil {
		return nil, err
	}
	return simulation.New(simulation.Config{
		Title:        title,
		Size:         steps,
		InitialSpot:  spot,
		TimeToExpiry: tte,
		Walk:         walk,
		NPaths:       paths,
		Seed:         seed,
		Workers:      workers,
	}, logging.WithSimulation(app.Logger, title))
}

// simulatorForOption builds a simulator matched to an option's spot
// and horizon. The drift defaults to the risk-neutral rate minus the
// dividend yield unless the flag was set explicitly.
func simulatorForOption(app *App, cmd *cobra.Command, opt models.Option) (*simulation.Simulator, error) {
	tte, err := opt.TimeToExpiry(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("drift") {
		drift := opt.RiskFreeRate.InexactFloat64() - opt.DividendYield.Float64()
		cmd.Flags().Set("drift", strconv.FormatFloat(drift, 'g', -1, 64))
	}
	return simulatorFromFlags(app, cmd, "mc_price", opt.Spot, tte, opt.ImpliedVol.Float64())
}

func newSimulateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate price paths and summarise the terminal distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			spot, _ := cmd.Flags().GetFloat64("spot")
			days, _ := cmd.Flags().GetFloat64("days")
			vol, _ := cmd.Flags().GetFloat64("vol")

			spotV, err := positive.FromFloat(spot)
			if err != nil {
				return apperrors.Wrap(err, "spot")
			}
			tte, err := positive.FromFloat(days / 365)
			if err != nil {
				return apperrors.Wrap(err, "days")
			}

			sim, err := simulatorFromFlags(app, cmd, "simulate", spotV, tte, vol)
			if err != nil {
				return err
			}
			paths, err := sim.Paths(cmd.Context())
			if err != nil {
				return err
			}

			terminals := make([]float64, len(paths))
			for i, p := range paths {
				terminals[i] = p.Terminal().Value.Float64()
			}
			mean, _ := stats.Mean(terminals)
			sd, _ := stats.StandardDeviationSample(terminals)
			p5, _ := stats.Percentile(terminals, 5)
			p95, _ := stats.Percentile(terminals, 95)

			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"paths": len(paths),
					"mean":  mean,
					"std":   sd,
					"p05":   p5,
					"p95":   p95,
				})
			}
			out.Bold("terminal distribution over %d paths", len(paths))
			out.Printf("mean %s  std %s  p05 %s  p95 %s\n",
				utils.FormatPrice(mean), utils.FormatPrice(sd),
				utils.FormatPrice(p5), utils.FormatPrice(p95))
			return nil
		},
	}
	cmd.Flags().Float64("spot", 0, "initial underlying price")
	cmd.Flags().Float64("days", 0, "horizon in calendar days")
	cmd.Flags().Float64("vol", 0.2, "walk volatility")
	simulationFlags(cmd, app)
	return cmd
}
