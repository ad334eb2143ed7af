package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/chain"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Import, export and inspect option chains",
	}
	cmd.AddCommand(
		newChainImportCmd(app),
		newChainExportCmd(app),
		newChainShowCmd(app),
	)
	return cmd
}

func chainFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "UNDERLYING", "underlying symbol")
	cmd.Flags().Float64("spot", 0, "underlying price")
	cmd.Flags().Float64("days", 30, "calendar days to expiry")
}

func chainFromFlags(cmd *cobra.Command) (*chain.Chain, error) {
	symbol, _ := cmd.Flags().GetString("symbol")
	spot, _ := cmd.Flags().GetFloat64("spot")
	days, _ := cmd.Flags().GetFloat64("days")

	spotV, err := positive.FromFloat(spot)
	if err != nil {
		return nil, apperrors.Wrap(err, "spot")
	}
	daysV, err := positive.FromFloat(days)
	if err != nil {
		return nil, apperrors.Wrap(err, "days")
	}
	return chain.New(symbol, spotV, models.ExpirationFromDays(daysV))
}

func newChainImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Load a semicolon CSV chain and validate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			c, err := chainFromFlags(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := c.ReadCSV(f); err != nil {
				return err
			}
			out.Success("imported %d strikes for %s", c.Len(), c.Symbol)
			return nil
		},
	}
	chainFlags(cmd)
	return cmd
}

func newChainExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Generate a synthetic chain and write it as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			symbol, _ := cmd.Flags().GetString("symbol")
			spot, _ := cmd.Flags().GetFloat64("spot")
			days, _ := cmd.Flags().GetFloat64("days")
			vol, _ := cmd.Flags().GetFloat64("vol")
			skew, _ := cmd.Flags().GetFloat64("skew")
			strikes, _ := cmd.Flags().GetInt("strikes")

			spotV, err := positive.FromFloat(spot)
			if err != nil {
				return apperrors.Wrap(err, "spot")
			}
			daysV, err := positive.FromFloat(days)
			if err != nil {
				return apperrors.Wrap(err, "days")
			}
			c, err := chain.BuildSynthetic(chain.SyntheticConfig{
				Symbol:      symbol,
				Spot:        spotV,
				Expiration:  models.ExpirationFromDays(daysV),
				Rate:        app.Config.Market.RiskFreeRate,
				Yield:       app.Config.Market.DividendYield,
				ATMVol:      vol,
				Skew:        skew,
				NumStrikes:  strikes,
				SpreadWidth: 0.01,
			}, time.Now().UTC())
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := c.WriteCSV(f); err != nil {
				return err
			}
			out.Success("wrote %d strikes to %s", c.Len(), args[0])
			return nil
		},
	}
	chainFlags(cmd)
	cmd.Flags().Float64("vol", 0.2, "at-the-money implied vol")
	cmd.Flags().Float64("skew", -0.1, "vol skew per unit log-moneyness")
	cmd.Flags().Int("strikes", 11, "number of strikes")
	return cmd
}

func newChainShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file.csv>",
		Short: "Render a chain ladder with quotes and Greeks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			c, err := chainFromFlags(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := c.ReadCSV(f); err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(c)
			}

			color.Cyan("%s chain, spot %s, %d strikes", c.Symbol, c.Spot, c.Len())
			out.Printf("%-10s %-9s %-9s %-9s %-9s %-7s %-8s %-8s\n",
				"strike", "c_bid", "c_ask", "p_bid", "p_ask", "iv", "d_call", "d_put")
			atm, _ := c.ATMRow()
			for _, r := range c.Rows() {
				line := out.DimText
				if r.Strike == atm.Strike {
					line = out.Green
				}
				out.Println(line(rowString(r)))
			}
			return nil
		},
	}
	chainFlags(cmd)
	return cmd
}

func rowString(r chain.Row) string {
	return fmt.Sprintf("%-10.2f %-9.2f %-9.2f %-9.2f %-9.2f %-7.3f %-8.3f %-8.3f",
		r.Strike, r.CallBid, r.CallAsk, r.PutBid, r.PutAsk, r.IV, r.DeltaCall, r.DeltaPut)
}
