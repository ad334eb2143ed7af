package chain

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

// chainDocument is the JSON round-trip shape of a chain.
type chainDocument struct {
	Symbol          string             `json:"symbol"`
	UnderlyingPrice positive.Value     `json:"underlying_price"`
	Expiration      expirationDocument `json:"expiration"`
	Strikes         []Row              `json:"strikes"`
}

// expirationDocument carries whichever expiration variant the chain
// holds: relative days or an absolute RFC3339 instant.
type expirationDocument struct {
	Days     *positive.Value `json:"days,omitempty"`
	Datetime *time.Time      `json:"datetime,omitempty"`
}

// WriteCSV writes the rows as semicolon-separated CSV with a fixed
// header.
func (c *Chain) WriteCSV(w io.Writer) error {
	rows := c.Rows()
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return &apperrors.ChainError{Kind: "csv", Symbol: c.Symbol, Message: "writing chain", Err: err}
	}
	return nil
}

// ReadCSV loads semicolon-separated rows into the chain, replacing any
// existing rows. Strike order and uniqueness are enforced on the way
// in.
func (c *Chain) ReadCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.Comma = ';'

	var rows []Row
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return &apperrors.ChainError{Kind: "csv", Symbol: c.Symbol, Message: "reading chain", Err: err}
	}

	c.rows = nil
	for _, row := range rows {
		if err := c.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON serialises the chain with its rows. The expiration keeps
// its variant: relative expiries serialise as days, absolute ones as an
// RFC3339 datetime.
func (c *Chain) MarshalJSON() ([]byte, error) {
	doc := chainDocument{
		Symbol:          c.Symbol,
		UnderlyingPrice: c.Spot,
		Strikes:         c.Rows(),
	}
	if d, ok := c.Expiration.Days(); ok {
		doc.Expiration.Days = &d
	} else if t, ok := c.Expiration.Datetime(); ok {
		doc.Expiration.Datetime = &t
	}
	return json.Marshal(doc)
}

// UnmarshalJSON restores a chain serialised by MarshalJSON.
func (c *Chain) UnmarshalJSON(data []byte) error {
	var doc chainDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return &apperrors.ChainError{Kind: "json", Message: "decoding chain", Err: err}
	}
	switch {
	case doc.Expiration.Days != nil:
		c.Expiration = models.ExpirationFromDays(*doc.Expiration.Days)
	case doc.Expiration.Datetime != nil:
		c.Expiration = models.ExpirationAt(*doc.Expiration.Datetime)
	default:
		return &apperrors.ChainError{Kind: "json", Symbol: doc.Symbol, Message: "missing expiration", Err: apperrors.ErrInvalidExpiration}
	}
	c.Symbol = doc.Symbol
	c.Spot = doc.UnderlyingPrice
	c.rows = nil
	for _, row := range doc.Strikes {
		if err := c.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}
