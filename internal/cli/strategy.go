package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/strategy"
	"optionlab/pkg/utils"
)

func newStrategyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Build, analyze and adjust multi-leg strategies",
	}
	cmd.AddCommand(
		newStrategyBuildCmd(app),
		newStrategyAnalyzeCmd(app),
		newStrategyAdjustCmd(app),
	)
	return cmd
}

// strategyFlags registers the flags shared by the strategy
// subcommands.
func strategyFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", "custom", "strategy kind (long_call, iron_condor, ...)")
	cmd.Flags().String("symbol", "UNDERLYING", "underlying symbol")
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().Float64("days", 30, "calendar days to expiry")
	cmd.Flags().Float64("vol", 0.2, "implied volatility for all legs")
	cmd.Flags().Float64("rate", 0.05, "risk-free rate")
	cmd.Flags().Float64("fee", 0, "open fee per leg")
	cmd.Flags().StringArray("leg", nil, "leg as side:style:strike:premium[:qty], repeatable")
}

// strategyFromFlags parses the legs and assembles the strategy.
func strategyFromFlags(cmd *cobra.Command) (*strategy.Strategy, error) {
	kindFlag, _ := cmd.Flags().GetString("kind")
	symbol, _ := cmd.Flags().GetString("symbol")
	spot, _ := cmd.Flags().GetFloat64("spot")
	days, _ := cmd.Flags().GetFloat64("days")
	vol, _ := cmd.Flags().GetFloat64("vol")
	rate, _ := cmd.Flags().GetFloat64("rate")
	fee, _ := cmd.Flags().GetFloat64("fee")
	legSpecs, _ := cmd.Flags().GetStringArray("leg")

	if len(legSpecs) == 0 {
		return nil, apperrors.ErrNoPositions
	}
	spotV, err := positive.FromFloat(spot)
	if err != nil {
		return nil, apperrors.Wrap(err, "spot")
	}

	now := time.Now().UTC()
	positions := make([]models.Position, 0, len(legSpecs))
	for _, spec := range legSpecs {
		p, err := parseLeg(spec, symbol, spotV, days, vol, rate, fee, now)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	kind := strategy.Kind(strings.ToUpper(kindFlag))
	return strategy.New(kind, symbol, spotV, positions...)
}

// parseLeg decodes one side:style:strike:premium[:qty] spec.
func parseLeg(spec, symbol string, spot positive.Value, days, vol, rate, fee float64, now time.Time) (models.Position, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return models.Position{}, apperrors.Wrapf(apperrors.ErrConfigInvalid, "leg %q: want side:style:strike:premium[:qty]", spec)
	}

	side := models.SideLong
	if strings.EqualFold(parts[0], "short") {
		side = models.SideShort
	}
	style := models.StyleCall
	if strings.EqualFold(parts[1], "put") {
		style = models.StylePut
	}
	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return models.Position{}, apperrors.Wrapf(apperrors.ErrConfigInvalid, "leg %q: bad strike", spec)
	}
	premium, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return models.Position{}, apperrors.Wrapf(apperrors.ErrConfigInvalid, "leg %q: bad premium", spec)
	}
	qty := 1.0
	if len(parts) == 5 {
		if qty, err = strconv.ParseFloat(parts[4], 64); err != nil {
			return models.Position{}, apperrors.Wrapf(apperrors.ErrConfigInvalid, "leg %q: bad quantity", spec)
		}
	}

	strikeV, err := positive.FromFloat(strike)
	if err != nil {
		return models.Position{}, apperrors.Wrapf(err, "leg %q: strike", spec)
	}
	premiumV, err := positive.FromFloat(premium)
	if err != nil {
		return models.Position{}, apperrors.Wrapf(err, "leg %q: premium", spec)
	}
	qtyV, err := positive.FromFloat(qty)
	if err != nil {
		return models.Position{}, apperrors.Wrapf(err, "leg %q: quantity", spec)
	}
	daysV, err := positive.FromFloat(days)
	if err != nil {
		return models.Position{}, apperrors.Wrap(err, "days")
	}
	volV, err := positive.FromFloat(vol)
	if err != nil {
		return models.Position{}, apperrors.Wrap(err, "vol")
	}
	feeV, err := positive.FromFloat(fee)
	if err != nil {
		return models.Position{}, apperrors.Wrap(err, "fee")
	}

	opt, err := models.NewOption(models.Option{
		Kind:          models.KindEuropean,
		Style:         style,
		Side:          side,
		Underlying:    symbol,
		Strike:        strikeV,
		Expiration:    models.ExpirationFromDays(daysV),
		ImpliedVol:    volV,
		Quantity:      qtyV,
		Spot:          spot,
		RiskFreeRate:  decimal.NewFromFloat(rate),
		DividendYield: positive.Zero,
	})
	if err != nil {
		return models.Position{}, err
	}
	return models.NewPosition(opt, premiumV, feeV, positive.Zero, now)
}

func newStrategyBuildCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Validate a leg pattern and show the resulting strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			s, err := strategyFromFlags(cmd)
			if err != nil {
				return err
			}
			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"kind":      s.Kind(),
					"positions": len(s.Positions()),
				})
			}
			out.Success("valid %s with %d legs", s.Kind(), len(s.Positions()))
			for _, p := range s.Positions() {
				out.Printf("  %-5s %-4s strike %-8s premium %s\n",
					p.Option.Side, p.Option.Style, p.Option.Strike, p.Premium)
			}
			return nil
		},
	}
	strategyFlags(cmd)
	return cmd
}

func newStrategyAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute strategy economics, Greeks and the payoff diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			s, err := strategyFromFlags(cmd)
			if err != nil {
				return err
			}
			now := time.Now().UTC()

			greeks, err := s.PortfolioGreeks(now)
			if err != nil {
				return err
			}
			breakEvens := s.BreakEvenPoints()
			netPremium, _ := s.NetPremium().Float64()

			if out.IsJSON() {
				bePoints := make([]float64, len(breakEvens))
				for i, be := range breakEvens {
					bePoints[i] = be.Float64()
				}
				return out.JSON(map[string]interface{}{
					"kind":         s.Kind(),
					"net_premium":  netPremium,
					"max_profit":   s.MaxProfit().String(),
					"max_loss":     s.MaxLoss().String(),
					"break_evens":  bePoints,
					"profit_area":  s.ProfitArea(positive.Zero).Float64(),
					"profit_ratio": s.ProfitRatio().Float64(),
					"greeks":       greeks,
				})
			}

			out.Bold("%s on %s @ %s", s.Kind(), s.Underlying(), s.Spot())
			out.Printf("net premium   %s\n", utils.FormatPnL(netPremium))
			out.Printf("max profit    %s\n", s.MaxProfit())
			out.Printf("max loss      %s\n", s.MaxLoss())
			out.Printf("profit area   %.1f%%\n", s.ProfitArea(positive.Zero).Float64())
			out.Printf("profit ratio  %.2f\n", s.ProfitRatio().Float64())
			if len(breakEvens) > 0 {
				bes := make([]string, len(breakEvens))
				for i, be := range breakEvens {
					bes[i] = utils.FormatPrice(be.Float64())
				}
				out.Printf("break-evens   %s\n", strings.Join(bes, ", "))
			}
			out.Printf("delta %s  gamma %s  theta %s  vega %s  rho %s\n",
				utils.FormatGreek(greeks.Delta), utils.FormatGreek(greeks.Gamma),
				utils.FormatGreek(greeks.Theta), utils.FormatGreek(greeks.Vega),
				utils.FormatGreek(greeks.Rho))
			out.Println()
			renderPayoff(out, s)
			return nil
		},
	}
	strategyFlags(cmd)
	return cmd
}

func newStrategyAdjustCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Plan quantity changes that bring delta to a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			s, err := strategyFromFlags(cmd)
			if err != nil {
				return err
			}
			target, _ := cmd.Flags().GetFloat64("target-delta")
			tol, _ := cmd.Flags().GetFloat64("tolerance")
			allowNew, _ := cmd.Flags().GetBool("allow-new-legs")
			allowUnderlying, _ := cmd.Flags().GetBool("allow-underlying")

			plan, err := s.OptimizedAdjustmentPlan(time.Now().UTC(), strategy.AdjustmentConfig{
				AllowNewLegs:    allowNew,
				AllowUnderlying: allowUnderlying,
			}, target, tol)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(plan)
			}
			if plan.NoAdjustmentNeeded {
				out.Success("no adjustment needed (residual delta %.4f)", plan.ResidualDelta)
				return nil
			}
			out.Bold("adjustment plan (%d actions)", len(plan.Actions))
			for i, a := range plan.Actions {
				out.Printf("%d. %-50s qty %+0.2f  delta %+0.4f  cost %s\n",
					i+1, a.Description, a.QuantityDelta, a.DeltaImpact, utils.FormatPrice(a.Cost))
			}
			out.Printf("estimated cost %s, residual delta %+.4f\n",
				utils.FormatPrice(plan.EstimatedCost.Float64()), plan.ResidualDelta)
			return nil
		},
	}
	strategyFlags(cmd)
	cmd.Flags().Float64("target-delta", 0, "target portfolio delta")
	cmd.Flags().Float64("tolerance", 0.1, "acceptable delta band")
	cmd.Flags().Bool("allow-new-legs", false, "allow opening a new leg")
	cmd.Flags().Bool("allow-underlying", false, "allow trading the underlying")
	return cmd
}

// renderPayoff draws the expiration P&L as a small ASCII chart across
// the break-even envelope.
func renderPayoff(out *Output, s *strategy.Strategy) {
	const (
		width  = 61
		height = 15
	)

	spot := s.Spot().Float64()
	lo, hi := spot*0.7, spot*1.3
	if bes := s.BreakEvenPoints(); len(bes) > 0 {
		pad := (bes[len(bes)-1].Float64() - bes[0].Float64() + spot*0.05) * 0.5
		lo = bes[0].Float64() - pad
		hi = bes[len(bes)-1].Float64() + pad
		if lo < 0 {
			lo = 0
		}
	}

	values := make([]float64, width)
	minV, maxV := 0.0, 0.0
	for i := range values {
		x := lo + (hi-lo)*float64(i)/float64(width-1)
		v, _ := s.PnLAt(positive.MustNew(x)).Float64()
		values[i] = v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == minV {
		maxV = minV + 1
	}

	grid := make([][]byte, height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", width))
	}
	zeroRow := int(float64(height-1) * maxV / (maxV - minV))
	if zeroRow >= 0 && zeroRow < height {
		for c := 0; c < width; c++ {
			grid[zeroRow][c] = '-'
		}
	}
	for c, v := range values {
		r := int(float64(height-1) * (maxV - v) / (maxV - minV))
		if r >= 0 && r < height {
			grid[r][c] = '*'
		}
	}

	out.Printf("payoff at expiration (%s .. %s)\n", utils.FormatPrice(lo), utils.FormatPrice(hi))
	for r, row := range grid {
		label := "        "
		if r == 0 {
			label = fmt.Sprintf("%8.2f", maxV)
		} else if r == height-1 {
			label = fmt.Sprintf("%8.2f", minV)
		}
		line := string(row)
		if r == zeroRow {
			line = out.DimText(line)
		}
		out.Printf("%s |%s|\n", label, line)
	}
}
