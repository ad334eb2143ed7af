// Package chain models an option chain: per-strike quote rows for one
// underlying and expiration, with synthetic generation, CSV and JSON
// round-trips and plot-ready views.
package chain

import (
	"math"
	"sort"
	"time"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/graph"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

// Row is one strike line of a chain. Quotes are floats; the chain is a
// market snapshot, not an accounting record.
type Row struct {
	Strike       float64 `csv:"strike" json:"strike"`
	CallBid      float64 `csv:"call_bid" json:"call_bid"`
	CallAsk      float64 `csv:"call_ask" json:"call_ask"`
	PutBid       float64 `csv:"put_bid" json:"put_bid"`
	PutAsk       float64 `csv:"put_ask" json:"put_ask"`
	IV           float64 `csv:"iv" json:"iv"`
	DeltaCall    float64 `csv:"delta_call" json:"delta_call"`
	DeltaPut     float64 `csv:"delta_put" json:"delta_put"`
	Gamma        float64 `csv:"gamma" json:"gamma"`
	Volume       int64   `csv:"volume" json:"volume"`
	OpenInterest int64   `csv:"open_interest" json:"open_interest"`
}

// CallMid returns the call mid quote.
func (r Row) CallMid() float64 {
	return (r.CallBid + r.CallAsk) / 2
}

// PutMid returns the put mid quote.
func (r Row) PutMid() float64 {
	return (r.PutBid + r.PutAsk) / 2
}

// Chain is the full strike ladder of one underlying and expiration.
// Rows stay sorted by strike and strikes are unique.
type Chain struct {
	Symbol     string
	Spot       positive.Value
	Expiration models.ExpirationDate
	rows       []Row
}

// New builds an empty chain.
func New(symbol string, spot positive.Value, expiration models.ExpirationDate) (*Chain, error) {
	if symbol == "" {
		return nil, &apperrors.ChainError{Kind: "input", Symbol: symbol, Message: "empty symbol"}
	}
	if spot.IsZero() {
		return nil, &apperrors.ChainError{Kind: "input", Symbol: symbol, Message: "spot must be positive"}
	}
	return &Chain{Symbol: symbol, Spot: spot, Expiration: expiration}, nil
}

// Len returns the number of strike rows.
func (c *Chain) Len() int {
	return len(c.rows)
}

// Rows returns a copy of the rows, strike-ascending.
func (c *Chain) Rows() []Row {
	return append([]Row(nil), c.rows...)
}

// AddRow inserts a row keeping strike order. Duplicate strikes are
// rejected.
func (c *Chain) AddRow(r Row) error {
	if r.Strike <= 0 {
		return &apperrors.ChainError{Kind: "input", Symbol: c.Symbol, Message: "strike must be positive"}
	}
	i := sort.Search(len(c.rows), func(i int) bool { return c.rows[i].Strike >= r.Strike })
	if i < len(c.rows) && c.rows[i].Strike == r.Strike {
		return apperrors.ErrStrikeExists
	}
	c.rows = append(c.rows, Row{})
	copy(c.rows[i+1:], c.rows[i:])
	c.rows[i] = r
	return nil
}

// Row returns the row at exactly the given strike.
func (c *Chain) Row(strike float64) (Row, error) {
	i := sort.Search(len(c.rows), func(i int) bool { return c.rows[i].Strike >= strike })
	if i < len(c.rows) && c.rows[i].Strike == strike {
		return c.rows[i], nil
	}
	return Row{}, apperrors.ErrDataNotFound
}

// ATMRow returns the row whose strike is closest to spot.
func (c *Chain) ATMRow() (Row, error) {
	if len(c.rows) == 0 {
		return Row{}, apperrors.ErrEmptyChain
	}
	spot := c.Spot.Float64()
	best := c.rows[0]
	for _, r := range c.rows[1:] {
		if math.Abs(r.Strike-spot) < math.Abs(best.Strike-spot) {
			best = r
		}
	}
	return best, nil
}

// TimeToExpiry returns the chain's remaining life in years.
func (c *Chain) TimeToExpiry(now time.Time) (positive.Value, error) {
	return c.Expiration.YearsFrom(now)
}

// TotalVolume sums the traded volume over all strikes.
func (c *Chain) TotalVolume() int64 {
	var total int64
	for _, r := range c.rows {
		total += r.Volume
	}
	return total
}

// PutCallVolumeSkew returns put-weighted open interest over
// call-weighted, a crude sentiment gauge. Strikes above spot count as
// call side, below as put side.
func (c *Chain) PutCallVolumeSkew() float64 {
	spot := c.Spot.Float64()
	var calls, puts int64
	for _, r := range c.rows {
		if r.Strike >= spot {
			calls += r.OpenInterest
		} else {
			puts += r.OpenInterest
		}
	}
	if calls == 0 {
		return 0
	}
	return float64(puts) / float64(calls)
}

// SmileSeries returns the implied-vol smile as a plot series.
func (c *Chain) SmileSeries() (graph.Series2D, error) {
	if len(c.rows) == 0 {
		return graph.Series2D{}, apperrors.ErrEmptyChain
	}
	x := make([]float64, len(c.rows))
	y := make([]float64, len(c.rows))
	for i, r := range c.rows {
		x[i] = r.Strike
		y[i] = r.IV
	}
	return graph.NewSeries2D(c.Symbol+" iv smile", x, y, graph.ModeLinesAndMarkers)
}

// GraphConfig returns display hints for the smile series.
func (c *Chain) GraphConfig() graph.Config {
	return graph.Config{
		Title:  c.Symbol + " implied volatility",
		XLabel: "strike",
		YLabel: "iv",
	}
}

// VolSurface assembles an implied-vol surface from several chains of
// the same underlying. Every chain must carry the same strike ladder.
func VolSurface(now time.Time, chains ...*Chain) (graph.Surface3D, error) {
	if len(chains) == 0 {
		return graph.Surface3D{}, apperrors.ErrEmptyChain
	}
	base := chains[0].Rows()
	if len(base) == 0 {
		return graph.Surface3D{}, apperrors.ErrEmptyChain
	}

	x := make([]float64, len(base))
	for i, r := range base {
		x[i] = r.Strike
	}

	y := make([]float64, len(chains))
	z := make([][]float64, len(chains))
	for i, c := range chains {
		rows := c.Rows()
		if len(rows) != len(base) {
			return graph.Surface3D{}, &apperrors.ChainError{
				Kind: "surface", Symbol: c.Symbol, Message: "chains must share a strike ladder",
			}
		}
		t, err := c.TimeToExpiry(now)
		if err != nil {
			return graph.Surface3D{}, err
		}
		y[i] = t.Float64()
		z[i] = make([]float64, len(rows))
		for j, r := range rows {
			if rows[j].Strike != base[j].Strike {
				return graph.Surface3D{}, &apperrors.ChainError{
					Kind: "surface", Symbol: c.Symbol, Message: "chains must share a strike ladder",
				}
			}
			z[i][j] = r.IV
		}
	}
	return graph.NewSurface3D(chains[0].Symbol+" vol surface", x, y, z)
}
