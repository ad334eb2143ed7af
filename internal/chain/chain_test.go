package chain

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

func emptyChain(t *testing.T) *Chain {
	t.Helper()
	c, err := New("ACME", positive.MustNew(100), models.ExpirationFromDays(positive.MustNew(30)))
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("", positive.MustNew(100), models.ExpirationFromDays(positive.MustNew(30)))
	assert.Error(t, err)

	_, err = New("ACME", positive.Zero, models.ExpirationFromDays(positive.MustNew(30)))
	assert.Error(t, err)
}

func TestAddRowKeepsOrderAndUniqueness(t *testing.T) {
	c := emptyChain(t)

	for _, k := range []float64{105, 95, 100} {
		require.NoError(t, c.AddRow(Row{Strike: k, Volume: 10, OpenInterest: 100}))
	}
	require.Equal(t, 3, c.Len())

	rows := c.Rows()
	assert.Equal(t, 95.0, rows[0].Strike)
	assert.Equal(t, 100.0, rows[1].Strike)
	assert.Equal(t, 105.0, rows[2].Strike)

	assert.ErrorIs(t, c.AddRow(Row{Strike: 100}), apperrors.ErrStrikeExists)
	assert.Error(t, c.AddRow(Row{Strike: -5}))

	row, err := c.Row(95)
	require.NoError(t, err)
	assert.Equal(t, 95.0, row.Strike)
	_, err = c.Row(97)
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)

	atm, err := c.ATMRow()
	require.NoError(t, err)
	assert.Equal(t, 100.0, atm.Strike)

	assert.Equal(t, int64(30), c.TotalVolume())
	// One strike below spot against two at or above.
	assert.InDelta(t, 0.5, c.PutCallVolumeSkew(), 1e-12)
}

func TestATMRowOnEmptyChain(t *testing.T) {
	_, err := emptyChain(t).ATMRow()
	assert.ErrorIs(t, err, apperrors.ErrEmptyChain)
}

func TestBuildSynthetic(t *testing.T) {
	now := time.Now()
	cfg := SyntheticConfig{
		Symbol:     "ACME",
		Spot:       positive.MustNew(100),
		Expiration: models.ExpirationFromDays(positive.MustNew(30)),
		Rate:       0.05,
		ATMVol:     0.25,
		Skew:       -0.1,
		NumStrikes: 11,
	}

	c, err := BuildSynthetic(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 11, c.Len())

	// With zero spread width bid equals ask, and the mids satisfy
	// put-call parity strike by strike.
	tte, err := c.TimeToExpiry(now)
	require.NoError(t, err)
	for _, r := range c.Rows() {
		assert.Equal(t, r.CallBid, r.CallAsk)
		forward := 100 - r.Strike*math.Exp(-0.05*tte.Float64())
		assert.InDelta(t, forward, r.CallMid()-r.PutMid(), 1e-8)
		assert.Positive(t, r.IV)
		assert.InDelta(t, 0.25-0.1*math.Log(r.Strike/100), r.IV, 1e-12)
	}

	// The negative skew tilts vols down as strikes rise.
	rows := c.Rows()
	assert.Greater(t, rows[0].IV, rows[len(rows)-1].IV)

	// A widened spread brackets the mid.
	cfg.SpreadWidth = 0.02
	wide, err := BuildSynthetic(cfg, now)
	require.NoError(t, err)
	for _, r := range wide.Rows() {
		assert.Less(t, r.CallBid, r.CallAsk)
		assert.InDelta(t, r.CallMid(), (r.CallBid+r.CallAsk)/2, 1e-12)
	}

	cfg.ATMVol = 0
	_, err = BuildSynthetic(cfg, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidVolatility)
}

func TestCSVRoundTrip(t *testing.T) {
	now := time.Now()
	src, err := BuildSynthetic(SyntheticConfig{
		Symbol:     "ACME",
		Spot:       positive.MustNew(100),
		Expiration: models.ExpirationFromDays(positive.MustNew(30)),
		Rate:       0.05,
		ATMVol:     0.25,
		NumStrikes: 5,
	}, now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.WriteCSV(&buf))
	assert.Contains(t, buf.String(), "strike;call_bid")

	dst := emptyChain(t)
	require.NoError(t, dst.ReadCSV(&buf))
	require.Equal(t, src.Len(), dst.Len())
	for i, want := range src.Rows() {
		got := dst.Rows()[i]
		assert.InDelta(t, want.Strike, got.Strike, 1e-9)
		assert.InDelta(t, want.CallBid, got.CallBid, 1e-9)
		assert.InDelta(t, want.IV, got.IV, 1e-9)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := emptyChain(t)
	require.NoError(t, src.AddRow(Row{Strike: 95, CallBid: 6, CallAsk: 6.4, IV: 0.27, Volume: 12}))
	require.NoError(t, src.AddRow(Row{Strike: 105, PutBid: 5.8, PutAsk: 6.1, IV: 0.23}))

	data, err := json.Marshal(src)
	require.NoError(t, err)

	// The document schema is fixed: symbol, underlying_price,
	// expiration, strikes.
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"symbol", "underlying_price", "expiration", "strikes"} {
		assert.Contains(t, doc, key)
	}

	var dst Chain
	require.NoError(t, json.Unmarshal(data, &dst))
	assert.Equal(t, "ACME", dst.Symbol)
	assert.True(t, dst.Spot.Equal(positive.MustNew(100)))
	assert.Equal(t, src.Rows(), dst.Rows())

	days, ok := dst.Expiration.Days()
	require.True(t, ok)
	assert.InDelta(t, 30, days.Float64(), 1e-12)
}

func TestJSONRoundTripDatetimeExpiration(t *testing.T) {
	expiry := time.Date(2026, 10, 15, 15, 30, 0, 0, time.UTC)
	src, err := New("ACME", positive.MustNew(100), models.ExpirationAt(expiry))
	require.NoError(t, err)
	require.NoError(t, src.AddRow(Row{Strike: 100, CallBid: 4.5, CallAsk: 4.7, IV: 0.21}))

	data, err := json.Marshal(src)
	require.NoError(t, err)

	var dst Chain
	require.NoError(t, json.Unmarshal(data, &dst))
	assert.Equal(t, src.Rows(), dst.Rows())

	// The datetime variant survives the round trip instead of
	// collapsing to zero days.
	_, isDays := dst.Expiration.Days()
	assert.False(t, isDays)
	at, ok := dst.Expiration.Datetime()
	require.True(t, ok)
	assert.True(t, at.Equal(expiry))

	now := expiry.AddDate(0, 0, -45)
	wantYears, err := src.Expiration.YearsFrom(now)
	require.NoError(t, err)
	gotYears, err := dst.Expiration.YearsFrom(now)
	require.NoError(t, err)
	assert.InDelta(t, wantYears.Float64(), gotYears.Float64(), 1e-12)
}

func TestJSONRejectsMissingExpiration(t *testing.T) {
	var dst Chain
	var chainErr *apperrors.ChainError
	err := json.Unmarshal([]byte(`{"symbol":"ACME","underlying_price":"100","strikes":[]}`), &dst)
	assert.ErrorAs(t, err, &chainErr)
	assert.ErrorIs(t, err, apperrors.ErrInvalidExpiration)
}

func TestSmileAndSurface(t *testing.T) {
	now := time.Now()
	build := func(days float64) *Chain {
		c, err := BuildSynthetic(SyntheticConfig{
			Symbol:     "ACME",
			Spot:       positive.MustNew(100),
			Expiration: models.ExpirationFromDays(positive.MustNew(days)),
			Rate:       0.05,
			ATMVol:     0.25,
			Skew:       -0.05,
			NumStrikes: 7,
		}, now)
		require.NoError(t, err)
		return c
	}

	near, far := build(30), build(60)

	smile, err := near.SmileSeries()
	require.NoError(t, err)
	assert.Len(t, smile.X, 7)
	assert.Len(t, smile.Y, 7)

	surface, err := VolSurface(now, near, far)
	require.NoError(t, err)
	assert.Len(t, surface.X, 7)
	assert.Len(t, surface.Y, 2)
	require.Len(t, surface.Z, 2)
	assert.Len(t, surface.Z[0], 7)
	assert.Less(t, surface.Y[0], surface.Y[1])

	// Mismatched ladders are rejected.
	short := emptyChain(t)
	require.NoError(t, short.AddRow(Row{Strike: 100, IV: 0.2}))
	var chainErr *apperrors.ChainError
	_, err = VolSurface(now, near, short)
	assert.ErrorAs(t, err, &chainErr)

	_, err = VolSurface(now)
	assert.ErrorIs(t, err, apperrors.ErrEmptyChain)

	_, err = emptyChain(t).SmileSeries()
	assert.ErrorIs(t, err, apperrors.ErrEmptyChain)
}
