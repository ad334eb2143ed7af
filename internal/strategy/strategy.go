// Package strategy represents composite option positions, their
// aggregate economics and the operations traders run on them:
// break-evens, extrema, Greeks, delta adjustment and simulation under
// exit policies.
package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

// Kind names a recognised leg pattern.
type Kind string

const (
	KindLongCall       Kind = "LONG_CALL"
	KindShortCall      Kind = "SHORT_CALL"
	KindLongPut        Kind = "LONG_PUT"
	KindShortPut       Kind = "SHORT_PUT"
	KindBullCallSpread Kind = "BULL_CALL_SPREAD"
	KindBearPutSpread  Kind = "BEAR_PUT_SPREAD"
	KindLongStraddle   Kind = "LONG_STRADDLE"
	KindShortStraddle  Kind = "SHORT_STRADDLE"
	KindLongStrangle   Kind = "LONG_STRANGLE"
	KindShortStrangle  Kind = "SHORT_STRANGLE"
	KindIronCondor     Kind = "IRON_CONDOR"
	KindIronButterfly  Kind = "IRON_BUTTERFLY"
	KindCallButterfly  Kind = "CALL_BUTTERFLY"
	KindPutButterfly   Kind = "PUT_BUTTERFLY"
	KindCoveredCall    Kind = "COVERED_CALL"
	KindProtectivePut  Kind = "PROTECTIVE_PUT"
	KindCustom         Kind = "CUSTOM"
)

// Valid reports whether the kind is one of the recognised patterns.
func (k Kind) Valid() bool {
	switch k {
	case KindLongCall, KindShortCall, KindLongPut, KindShortPut,
		KindBullCallSpread, KindBearPutSpread,
		KindLongStraddle, KindShortStraddle,
		KindLongStrangle, KindShortStrangle,
		KindIronCondor, KindIronButterfly,
		KindCallButterfly, KindPutButterfly,
		KindCoveredCall, KindProtectivePut,
		KindCustom:
		return true
	}
	return false
}

// StockLeg is a holding in the underlying itself, used by covered
// calls and protective puts. Quantity is signed: positive for long
// shares.
type StockLeg struct {
	Quantity decimal.Decimal
	Basis    positive.Value // entry price per share
}

// Strategy is a composite position over one underlying. Mutation is
// not safe for concurrent use; callers serialise access.
type Strategy struct {
	kind       Kind
	underlying string
	spot       positive.Value
	stock      *StockLeg
	positions  []models.Position
	log        []models.Transaction
}

// New validates the legs against the kind's pattern and builds the
// strategy.
func New(kind Kind, underlying string, spot positive.Value, positions ...models.Position) (*Strategy, error) {
	return NewWithStock(kind, underlying, spot, nil, positions...)
}

// NewWithStock builds a strategy that also holds the underlying, as
// covered calls and protective puts require.
func NewWithStock(kind Kind, underlying string, spot positive.Value, stock *StockLeg, positions ...models.Position) (*Strategy, error) {
	if !kind.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown strategy kind %q", kind)
	}
	if len(positions) == 0 {
		return nil, apperrors.ErrNoPositions
	}
	s := &Strategy{
		kind:       kind,
		underlying: underlying,
		spot:       spot,
		stock:      stock,
		positions:  append([]models.Position(nil), positions...),
	}
	if err := s.validateLegs(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for _, p := range s.positions {
		s.log = append(s.log, models.NewTransaction(models.TransactionOpen, p, spot, now))
	}
	return s, nil
}

// Kind returns the strategy's pattern name.
func (s *Strategy) Kind() Kind {
	return s.kind
}

// Underlying returns the underlying symbol.
func (s *Strategy) Underlying() string {
	return s.underlying
}

// Spot returns the reference underlying price.
func (s *Strategy) Spot() positive.Value {
	return s.spot
}

// SetSpot updates the reference underlying price.
func (s *Strategy) SetSpot(spot positive.Value) {
	s.spot = spot
}

// Stock returns the underlying holding, if any.
func (s *Strategy) Stock() *StockLeg {
	return s.stock
}

// Positions returns a copy of the legs.
func (s *Strategy) Positions() []models.Position {
	return append([]models.Position(nil), s.positions...)
}

// Transactions returns a copy of the audit log.
func (s *Strategy) Transactions() []models.Transaction {
	return append([]models.Transaction(nil), s.log...)
}

// AddPosition appends a leg. Named strategies reject legs that break
// their pattern; custom strategies accept any leg.
func (s *Strategy) AddPosition(p models.Position) error {
	s.positions = append(s.positions, p)
	if err := s.validateLegs(); err != nil {
		s.positions = s.positions[:len(s.positions)-1]
		return err
	}
	s.log = append(s.log, models.NewTransaction(models.TransactionOpen, p, s.spot, time.Now().UTC()))
	return nil
}

// ModifyPosition replaces the leg matching the given style, side and
// strike.
func (s *Strategy) ModifyPosition(p models.Position) error {
	for i, existing := range s.positions {
		if existing.Option.Style == p.Option.Style &&
			existing.Option.Side == p.Option.Side &&
			existing.Option.Strike.Equal(p.Option.Strike) {
			s.positions[i] = p
			return nil
		}
	}
	return apperrors.ErrPositionNotFound
}

// GetPosition returns the legs matching the given style, side and
// strike.
func (s *Strategy) GetPosition(style models.Style, side models.Side, strike positive.Value) []models.Position {
	var out []models.Position
	for _, p := range s.positions {
		if p.Option.Style == style && p.Option.Side == side && p.Option.Strike.Equal(strike) {
			out = append(out, p)
		}
	}
	return out
}

// ClosePosition closes the leg at the given index at a price and
// records the transaction.
func (s *Strategy) ClosePosition(index int, at time.Time, price positive.Value) error {
	if index < 0 || index >= len(s.positions) {
		return apperrors.ErrPositionNotFound
	}
	if err := s.positions[index].Close(at, price); err != nil {
		return err
	}
	s.log = append(s.log, models.NewTransaction(models.TransactionClosed, s.positions[index], s.spot, at))
	return nil
}

// NetPremium returns the signed entry cash flow of the whole
// strategy: premium credits minus premium debits minus all fees.
// Credit strategies are positive.
func (s *Strategy) NetPremium() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.positions {
		total = total.Add(p.NetCost())
	}
	return total
}

// Fees returns all open and close fees across legs.
func (s *Strategy) Fees() positive.Value {
	total := positive.Zero
	for _, p := range s.positions {
		total = total.Add(p.TotalFees())
	}
	return total
}

// PnLAt returns the profit or loss if the underlying expires at spot:
// expiration payoffs plus entry cash flows, plus the stock leg's move
// from its basis.
func (s *Strategy) PnLAt(spot positive.Value) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.positions {
		total = total.Add(p.PnLAt(spot))
	}
	if s.stock != nil {
		move := spot.Decimal().Sub(s.stock.Basis.Decimal())
		total = total.Add(s.stock.Quantity.Mul(move))
	}
	return total
}
