package models

import (
	"time"

	"github.com/shopspring/decimal"

	"optionlab/internal/positive"
)

// TransactionStatus is the lifecycle state recorded in the audit log.
type TransactionStatus string

const (
	TransactionOpen    TransactionStatus = "OPEN"
	TransactionClosed  TransactionStatus = "CLOSED"
	TransactionExpired TransactionStatus = "EXPIRED"
)

// Transaction is one append-only audit record inside a strategy.
type Transaction struct {
	Status          TransactionStatus
	Timestamp       time.Time
	Style           Style
	Side            Side
	Strike          positive.Value
	Quantity        positive.Value
	Premium         positive.Value
	Fees            positive.Value
	UnderlyingPrice positive.Value
	DaysToExpiry    positive.Value
	ImpliedVol      positive.Value
}

// NewTransaction records the state of a position at a lifecycle event.
func NewTransaction(status TransactionStatus, p Position, underlying positive.Value, at time.Time) Transaction {
	days := positive.Zero
	if d, ok := p.Option.Expiration.Days(); ok {
		days = d
	} else if t, ok := p.Option.Expiration.Datetime(); ok {
		if rem := t.Sub(at.UTC()).Hours() / 24; rem > 0 {
			days = positive.MustNew(rem)
		}
	}
	return Transaction{
		Status:          status,
		Timestamp:       at.UTC(),
		Style:           p.Option.Style,
		Side:            p.Option.Side,
		Strike:          p.Option.Strike,
		Quantity:        p.Option.Quantity,
		Premium:         p.Premium,
		Fees:            p.TotalFees(),
		UnderlyingPrice: underlying,
		DaysToExpiry:    days,
		ImpliedVol:      p.Option.ImpliedVol,
	}
}

// TotalCost returns premium x quantity plus fees, signed by side:
// negative cash for long entries, positive for short entries.
func (t Transaction) TotalCost() decimal.Decimal {
	notional := t.Premium.Mul(t.Quantity).Decimal()
	fees := t.Fees.Decimal()
	if t.Side == SideLong {
		return notional.Neg().Sub(fees)
	}
	return notional.Sub(fees)
}
