package models

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/positive"
)

// Position is an option contract together with its traded premium and
// fees. It is created on entry and mutated only by close-out.
type Position struct {
	Option   Option
	Premium  positive.Value
	OpenFee  positive.Value
	CloseFee positive.Value
	OpenedAt time.Time

	closedAt   *time.Time
	closePrice *positive.Value
}

// NewPosition validates and builds a position.
func NewPosition(opt Option, premium, openFee, closeFee positive.Value, openedAt time.Time) (Position, error) {
	validated, err := NewOption(opt)
	if err != nil {
		return Position{}, err
	}
	if openedAt.IsZero() {
		openedAt = time.Now().UTC()
	}
	return Position{
		Option:   validated,
		Premium:  premium,
		OpenFee:  openFee,
		CloseFee: closeFee,
		OpenedAt: openedAt.UTC(),
	}, nil
}

// IsClosed reports whether the position has been closed out.
func (p Position) IsClosed() bool {
	return p.closedAt != nil
}

// ClosedAt returns the close timestamp, if any.
func (p Position) ClosedAt() (time.Time, bool) {
	if p.closedAt == nil {
		return time.Time{}, false
	}
	return *p.closedAt, true
}

// ClosePrice returns the close price, if any.
func (p Position) ClosePrice() (positive.Value, bool) {
	if p.closePrice == nil {
		return positive.Zero, false
	}
	return *p.closePrice, true
}

// Close marks the position closed at the given time and price. The
// close timestamp must not precede the open timestamp.
func (p *Position) Close(at time.Time, price positive.Value) error {
	at = at.UTC()
	if at.Before(p.OpenedAt) {
		return apperrors.Wrap(apperrors.ErrInvalidExpiration, "close timestamp precedes open timestamp")
	}
	p.closedAt = &at
	p.closePrice = &price
	return nil
}

// TotalFees returns open fee plus close fee.
func (p Position) TotalFees() positive.Value {
	return p.OpenFee.Add(p.CloseFee)
}

// PremiumCashFlow returns the signed premium cash flow: a debit
// (negative) for long positions, a credit (positive) for short ones.
// Fees are not included.
func (p Position) PremiumCashFlow() decimal.Decimal {
	notional := p.Premium.Mul(p.Option.Quantity).Decimal()
	if p.Option.Side == SideLong {
		return notional.Neg()
	}
	return notional
}

// NetCost returns the signed cash impact of entering (and eventually
// exiting) the position: premium cash flow minus all fees.
func (p Position) NetCost() decimal.Decimal {
	return p.PremiumCashFlow().Sub(p.TotalFees().Decimal())
}

// PnLAt returns the profit or loss if the underlying expires at spot:
// payoff at expiration plus the net entry cost.
func (p Position) PnLAt(spot positive.Value) decimal.Decimal {
	return p.Option.PayoffAtExpiration(spot).Add(p.NetCost())
}
