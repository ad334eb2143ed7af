package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.00", FormatPrice(0))
	assert.Equal(t, "999.99", FormatPrice(999.99))
	assert.Equal(t, "1,000.00", FormatPrice(1000))
	assert.Equal(t, "1,234,567.89", FormatPrice(1234567.891))
	assert.Equal(t, "-12,345.60", FormatPrice(-12345.6))
}

func TestFormatPercentAndPnL(t *testing.T) {
	assert.Equal(t, "+12.50%", FormatPercent(12.5))
	assert.Equal(t, "-3.00%", FormatPercent(-3))
	assert.Equal(t, "0.00%", FormatPercent(0))

	assert.Equal(t, "+1,500.00", FormatPnL(1500))
	assert.Equal(t, "-250.75", FormatPnL(-250.75))
	assert.Equal(t, "0.00", FormatPnL(0))
}

func TestFormatGreek(t *testing.T) {
	assert.Equal(t, "+0.5695", FormatGreek(0.56949))
	assert.Equal(t, "-0.0287", FormatGreek(-0.02870))
	assert.Equal(t, "+0.0000", FormatGreek(0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "350ms", FormatDuration(350*time.Millisecond))
	assert.Equal(t, "2.5s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "3m05s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "1h02m", FormatDuration(time.Hour+2*time.Minute))
}

func TestFormatYears(t *testing.T) {
	assert.Equal(t, "30.0d", FormatYears(30.0/365))
	assert.Equal(t, "0.50y", FormatYears(0.5))
}
