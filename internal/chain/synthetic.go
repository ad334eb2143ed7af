package chain

import (
	"math"
	"time"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
	"optionlab/internal/pricing"
)

// SyntheticConfig drives chain generation from model prices instead of
// market quotes.
type SyntheticConfig struct {
	Symbol     string
	Spot       positive.Value
	Expiration models.ExpirationDate
	Rate       float64
	Yield      float64

	// ATMVol is the implied vol at the money; Skew tilts it linearly in
	// log-moneyness, negative for the usual equity smirk.
	ATMVol float64
	Skew   float64

	// Strike ladder: Strikes overrides the range when set; otherwise
	// NumStrikes strikes are spaced by StrikeStep around spot.
	Strikes    []float64
	NumStrikes int
	StrikeStep float64

	// SpreadWidth is the half bid/ask spread as a fraction of mid.
	SpreadWidth float64
}

// BuildSynthetic prices a full chain from the config's smile. Rows
// carry model mids widened into bid/ask, the smile vol and analytic
// delta/gamma. Volume and open interest stay zero.
func BuildSynthetic(cfg SyntheticConfig, now time.Time) (*Chain, error) {
	if cfg.ATMVol <= 0 {
		return nil, apperrors.ErrInvalidVolatility
	}
	c, err := New(cfg.Symbol, cfg.Spot, cfg.Expiration)
	if err != nil {
		return nil, err
	}
	t, err := c.TimeToExpiry(now)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return nil, apperrors.ErrInvalidExpiration
	}

	strikes := cfg.Strikes
	if len(strikes) == 0 {
		strikes = defaultLadder(cfg)
	}
	spread := cfg.SpreadWidth
	if spread < 0 {
		spread = 0
	}

	spot := cfg.Spot.Float64()
	for _, strike := range strikes {
		if strike <= 0 {
			continue
		}
		vol := cfg.ATMVol + cfg.Skew*math.Log(strike/spot)
		if vol < 1e-4 {
			vol = 1e-4
		}

		callParams := pricing.Params{
			Spot: spot, Strike: strike, TimeToExpiry: t.Float64(),
			Volatility: vol, Rate: cfg.Rate, Yield: cfg.Yield,
			Style: models.StyleCall,
		}
		putParams := callParams
		putParams.Style = models.StylePut

		callMid, err := pricing.Price(callParams)
		if err != nil {
			return nil, err
		}
		putMid, err := pricing.Price(putParams)
		if err != nil {
			return nil, err
		}
		callGreeks, err := pricing.ComputeGreeks(callParams)
		if err != nil {
			return nil, err
		}
		putGreeks, err := pricing.ComputeGreeks(putParams)
		if err != nil {
			return nil, err
		}

		row := Row{
			Strike:    strike,
			CallBid:   callMid * (1 - spread),
			CallAsk:   callMid * (1 + spread),
			PutBid:    putMid * (1 - spread),
			PutAsk:    putMid * (1 + spread),
			IV:        vol,
			DeltaCall: callGreeks.Delta,
			DeltaPut:  putGreeks.Delta,
			Gamma:     callGreeks.Gamma,
		}
		if err := c.AddRow(row); err != nil {
			return nil, err
		}
	}
	if c.Len() == 0 {
		return nil, apperrors.ErrEmptyChain
	}
	return c, nil
}

// defaultLadder spaces NumStrikes strikes symmetrically around spot.
func defaultLadder(cfg SyntheticConfig) []float64 {
	n := cfg.NumStrikes
	if n <= 0 {
		n = 11
	}
	step := cfg.StrikeStep
	if step <= 0 {
		step = cfg.Spot.Float64() * 0.025
	}
	spot := cfg.Spot.Float64()
	start := spot - step*float64(n/2)

	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start+step*float64(i))
	}
	return out
}
