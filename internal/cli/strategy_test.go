package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/models"
	"optionlab/internal/positive"
)

func TestParseLeg(t *testing.T) {
	now := time.Now().UTC()
	spot := positive.MustNew(100)

	p, err := parseLeg("short:put:95:1.2:2", "ACME", spot, 30, 0.2, 0.05, 0.5, now)
	require.NoError(t, err)
	assert.Equal(t, models.SideShort, p.Option.Side)
	assert.Equal(t, models.StylePut, p.Option.Style)
	assert.True(t, p.Option.Strike.Equal(positive.MustNew(95)))
	assert.True(t, p.Option.Quantity.Equal(positive.Two))
	assert.True(t, p.Premium.Equal(positive.MustNew(1.2)))

	// Defaults: long call, quantity one.
	p, err = parseLeg("buy:call:100:4", "ACME", spot, 30, 0.2, 0.05, 0, now)
	require.NoError(t, err)
	assert.Equal(t, models.SideLong, p.Option.Side)
	assert.True(t, p.Option.Quantity.Equal(positive.One))
}

func TestParseLegRejectsMalformedSpecs(t *testing.T) {
	now := time.Now().UTC()
	spot := positive.MustNew(100)

	for _, spec := range []string{"long:call:100", "long:call:100:4:2:9", "long:call:x:4", "long:call:100:x", "long:call:100:4:x"} {
		_, err := parseLeg(spec, "ACME", spot, 30, 0.2, 0.05, 0, now)
		assert.ErrorIs(t, err, apperrors.ErrConfigInvalid, "spec %q", spec)
	}
}

func TestParseLegRejectsNegativeValues(t *testing.T) {
	now := time.Now().UTC()
	spot := positive.MustNew(100)

	// Negative inputs surface as errors instead of panicking.
	for _, spec := range []string{"long:call:-100:4", "long:call:100:-4", "long:call:100:4:-1"} {
		_, err := parseLeg(spec, "ACME", spot, 30, 0.2, 0.05, 0, now)
		assert.ErrorIs(t, err, apperrors.ErrNegativeValue, "spec %q", spec)
	}

	_, err := parseLeg("long:call:100:4", "ACME", spot, -30, 0.2, 0.05, 0, now)
	assert.ErrorIs(t, err, apperrors.ErrNegativeValue)
	_, err = parseLeg("long:call:100:4", "ACME", spot, 30, -0.2, 0.05, 0, now)
	assert.ErrorIs(t, err, apperrors.ErrNegativeValue)
	_, err = parseLeg("long:call:100:4", "ACME", spot, 30, 0.2, 0.05, -0.5, now)
	assert.ErrorIs(t, err, apperrors.ErrNegativeValue)
}
