package positive

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "optionlab/internal/errors"
)

func TestConstructorsRejectNegatives(t *testing.T) {
	_, err := New(decimal.NewFromFloat(-0.01))
	assert.ErrorIs(t, err, apperrors.ErrNegativeValue)

	_, err = FromFloat(-1)
	assert.ErrorIs(t, err, apperrors.ErrNegativeValue)

	_, err = FromString("-3.5")
	assert.ErrorIs(t, err, apperrors.ErrNegativeValue)

	v, err := FromFloat(0)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestComparisons(t *testing.T) {
	a := MustNew(1.5)
	b := MustNew(2.5)

	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.Equal(t, -1, a.Cmp(b))
	assert.True(t, a.Equal(MustNew(1.5)))
	assert.True(t, a.Min(b).Equal(a))
	assert.True(t, a.Max(b).Equal(b))
}

func TestUnmarshalRejectsNegative(t *testing.T) {
	var v Value
	err := v.UnmarshalJSON([]byte(`"-2"`))
	assert.Error(t, err)
}
