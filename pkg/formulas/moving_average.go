package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average aligned with values.
// Entries without a full window are NaN; nil when the series is shorter than the window.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	sma := talib.Sma(values, period)
	for i := 0; i < period-1 && i < len(sma); i++ {
		sma[i] = math.NaN()
	}
	return sma
}
