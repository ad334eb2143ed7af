package cli

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/pricing"
	"optionlab/pkg/utils"
)

// optionFlags registers the contract flags shared by price, greeks and
// iv.
func optionFlags(cmd *cobra.Command) {
	cmd.Flags().String("style", "call", "option style: call or put")
	cmd.Flags().String("side", "long", "position side: long or short")
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("days", 0, "calendar days to expiry")
	cmd.Flags().Float64("vol", 0, "implied volatility (annualised)")
	cmd.Flags().Float64("rate", 0.05, "risk-free rate")
	cmd.Flags().Float64("yield", 0, "continuous dividend yield")
	cmd.Flags().Float64("qty", 1, "contract quantity")
}

// optionFromFlags builds a validated option from the shared flags.
func optionFromFlags(cmd *cobra.Command) (models.Option, error) {
	styleFlag, _ := cmd.Flags().GetString("style")
	sideFlag, _ := cmd.Flags().GetString("side")
	spot, _ := cmd.Flags().GetFloat64("spot")
	strike, _ := cmd.Flags().GetFloat64("strike")
	days, _ := cmd.Flags().GetFloat64("days")
	vol, _ := cmd.Flags().GetFloat64("vol")
	rate, _ := cmd.Flags().GetFloat64("rate")
	yield, _ := cmd.Flags().GetFloat64("yield")
	qty, _ := cmd.Flags().GetFloat64("qty")

	style := models.StyleCall
	if strings.EqualFold(styleFlag, "put") {
		style = models.StylePut
	}
	side := models.SideLong
	if strings.EqualFold(sideFlag, "short") {
		side = models.SideShort
	}

	spotV, err := positive.FromFloat(spot)
	if err != nil {
		return models.Option{}, apperrors.Wrap(err, "spot")
	}
	strikeV, err := positive.FromFloat(strike)
	if err != nil {
		return models.Option{}, apperrors.Wrap(err, "strike")
	}
	daysV, err := positive.FromFloat(days)
	if err != nil {
		return models.Option{}, apperrors.Wrap(err, "days")
	}
	volV, err := positive.FromFloat(vol)
	if err != nil {
		return models.Option{}, apperrors.Wrap(err, "vol")
	}
	yieldV, err := positive.FromFloat(yield)
	if err != nil {
		return models.Option{}, apperrors.Wrap(err, "yield")
	}
	qtyV, err := positive.FromFloat(qty)
	if err != nil {
		return models.Option{}, apperrors.Wrap(err, "qty")
	}

	return models.NewOption(models.Option{
		Kind:          models.KindEuropean,
		Style:         style,
		Side:          side,
		Strike:        strikeV,
		Expiration:    models.ExpirationFromDays(daysV),
		ImpliedVol:    volV,
		Quantity:      qtyV,
		Spot:          spotV,
		RiskFreeRate:  decimal.NewFromFloat(rate),
		DividendYield: yieldV,
	})
}

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price an option closed-form or by Monte Carlo",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			opt, err := optionFromFlags(cmd)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			useMC, _ := cmd.Flags().GetBool("mc")

			engine := pricing.ClosedForm()
			if useMC {
				sim, err := simulatorForOption(app, cmd, opt)
				if err != nil {
					return err
				}
				engine = pricing.MonteCarlo(sim)
			}

			price, err := pricing.OptionPrice(cmd.Context(), opt, engine, now)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"price":  price,
					"method": engine.Method,
				})
			}
			out.Bold("%s %s @ %s", opt.Side, opt.Style, opt.Strike)
			out.Printf("price: %s\n", utils.FormatPrice(price.Float64()))
			return nil
		},
	}
	optionFlags(cmd)
	cmd.Flags().Bool("mc", false, "use the Monte-Carlo engine")
	simulationFlags(cmd, app)
	return cmd
}

func newGreeksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "Compute analytic Greeks and higher-order sensitivities",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			opt, err := optionFromFlags(cmd)
			if err != nil {
				return err
			}
			now := time.Now().UTC()

			g, err := pricing.OptionGreeks(opt, now)
			if err != nil {
				return err
			}
			p, err := pricing.ParamsFromOption(opt, now)
			if err != nil {
				return err
			}
			ho, err := pricing.ComputeHigherOrder(p)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"greeks":       g,
					"higher_order": ho,
				})
			}
			out.Bold("%s %s @ %s", opt.Side, opt.Style, opt.Strike)
			out.Printf("delta %s  gamma %s  theta %s/day  vega %s  rho %s\n",
				utils.FormatGreek(g.Delta), utils.FormatGreek(g.Gamma),
				utils.FormatGreek(g.Theta), utils.FormatGreek(g.Vega), utils.FormatGreek(g.Rho))
			out.Printf("vanna %s  vomma %s  charm %s  veta %s  color %s\n",
				utils.FormatGreek(ho.Vanna), utils.FormatGreek(ho.Vomma),
				utils.FormatGreek(ho.Charm), utils.FormatGreek(ho.Veta), utils.FormatGreek(ho.Color))
			return nil
		},
	}
	optionFlags(cmd)
	return cmd
}

func newIVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Solve implied volatility from a market price",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			opt, err := optionFromFlags(cmd)
			if err != nil {
				return err
			}
			market, _ := cmd.Flags().GetFloat64("price")

			p, err := pricing.ParamsFromOption(opt, time.Now().UTC())
			if err != nil {
				return err
			}
			solver := pricing.Solver{
				PriceTolerance: app.Config.Solver.PriceTolerance,
				SigmaTolerance: app.Config.Solver.SigmaTolerance,
				MaxIterations:  app.Config.Solver.MaxIterations,
			}
			res, err := solver.ImpliedVolatility(p, market)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"sigma":      res.Sigma,
					"iterations": res.Iterations,
				})
			}
			out.Printf("implied vol: %.6f (%d iterations)\n", res.Sigma, res.Iterations)
			return nil
		},
	}
	optionFlags(cmd)
	cmd.Flags().Float64("price", 0, "observed market price")
	cmd.MarkFlagRequired("price")
	return cmd
}
