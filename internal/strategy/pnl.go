package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/pricing"
)

// PnL is a mark-to-market snapshot of the whole strategy.
type PnL struct {
	Realized      decimal.Decimal
	Unrealized    decimal.Decimal
	InitialCosts  positive.Value // fees plus premium debits
	InitialIncome positive.Value // premium credits
	Timestamp     time.Time
}

// Total returns realized plus unrealized P&L.
func (p PnL) Total() decimal.Decimal {
	return p.Realized.Add(p.Unrealized)
}

// CalculatePnL marks the strategy to market at the given spot and
// time. An overriding implied volatility applies to every open leg
// when non-zero; otherwise each leg is valued at its own implied vol.
func (s *Strategy) CalculatePnL(now time.Time, spot, iv positive.Value) (PnL, error) {
	out := PnL{Timestamp: now.UTC()}

	for _, p := range s.positions {
		notional := p.Premium.Mul(p.Option.Quantity)
		if p.Option.Side == models.SideLong {
			out.InitialCosts = out.InitialCosts.Add(notional)
		} else {
			out.InitialIncome = out.InitialIncome.Add(notional)
		}
		out.InitialCosts = out.InitialCosts.Add(p.TotalFees())

		if p.IsClosed() {
			out.Realized = out.Realized.Add(realizedPnL(p))
			continue
		}

		t, err := p.Option.TimeToExpiry(now)
		if err != nil {
			return PnL{}, err
		}
		mark, err := markLeg(p, spot.Float64(), t.Float64(), iv)
		if err != nil {
			return PnL{}, err
		}
		entry := p.Premium.Float64()
		qty := p.Option.Quantity.Float64()
		out.Unrealized = out.Unrealized.Add(
			decimal.NewFromFloat((mark - entry) * qty * p.Option.Side.Sign()))
	}

	if s.stock != nil {
		move := spot.Decimal().Sub(s.stock.Basis.Decimal())
		out.Unrealized = out.Unrealized.Add(s.stock.Quantity.Mul(move))
	}
	return out, nil
}

// realizedPnL is the cash result of a closed leg: side-signed close
// versus entry, net of fees.
func realizedPnL(p models.Position) decimal.Decimal {
	exit, _ := p.ClosePrice()
	qty := p.Option.Quantity.Float64()
	gross := (exit.Float64() - p.Premium.Float64()) * qty * p.Option.Side.Sign()
	return decimal.NewFromFloat(gross).Sub(p.TotalFees().Decimal())
}

// markLeg values one unit of a leg's option at the given spot, time
// to expiry and vol. It prices closed-form; barrier exotics go through
// the reflection pricer; other exotics have no cheap mark and error.
func markLeg(p models.Position, spot, tte float64, ivOverride positive.Value) (float64, error) {
	vol := p.Option.ImpliedVol.Float64()
	if !ivOverride.IsZero() {
		vol = ivOverride.Float64()
	}
	if tte <= 0 {
		// At expiry the mark is intrinsic.
		return p.Option.IntrinsicValue(positive.MustNew(spot)).Float64(), nil
	}

	params := pricing.Params{
		Spot:         spot,
		Strike:       p.Option.Strike.Float64(),
		TimeToExpiry: tte,
		Volatility:   vol,
		Rate:         p.Option.RiskFreeRate.InexactFloat64(),
		Yield:        p.Option.DividendYield.Float64(),
		Style:        p.Option.Style,
	}

	if p.Option.Kind == models.KindExotic {
		if p.Option.Exotic == nil || p.Option.Exotic.Variant != models.ExoticBarrier {
			return 0, apperrors.NewPricingError("mark_to_market", "exotic variant has no closed-form mark", nil)
		}
		return pricing.BarrierPrice(params, *p.Option.Exotic)
	}
	return pricing.Price(params)
}
