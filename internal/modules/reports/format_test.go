package reports

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,250.00", FormatMoney(1250))
	assert.Equal(t, "$0.30", FormatMoney(0.1+0.2))
	assert.Equal(t, "-$12.50", FormatMoney(-12.5))
	assert.Equal(t, "$1,234,567.89", FormatMoney(1234567.891))
	assert.Equal(t, "n/a", FormatMoney(math.NaN()))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "25.00%", FormatPercent(25))
	assert.Equal(t, "-3.14%", FormatPercent(-3.14159))
	assert.Equal(t, "n/a", FormatPercent(math.Inf(1)))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "10", FormatQuantity(10))
	assert.Equal(t, "0.5", FormatQuantity(0.5))
	assert.Equal(t, "1.2346", FormatQuantity(1.23456))
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "1.50", FormatRatio(1.5))
	assert.Equal(t, "0.00", FormatRatio(0))
}
