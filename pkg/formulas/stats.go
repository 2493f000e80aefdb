// Package formulas holds the numerical building blocks of the risk engine.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTradingDays is the number of trading days used to annualize daily statistics.
const DefaultTradingDays = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// SampleStdDev returns the unbiased (n-1) standard deviation.
// Fewer than two observations have no dispersion and yield 0.
func SampleStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sd := stat.StdDev(data, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

// AnnualizedVolatility scales the sample std dev of periodic returns by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultTradingDays
	}
	return SampleStdDev(returns) * math.Sqrt(float64(periodsPerYear))
}

// CalculateReturns converts prices to simple returns.
// Returns[i] = Price[i+1]/Price[i] - 1; a zero previous price yields a 0 return.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = prices[i]/prices[i-1] - 1
		}
	}

	return returns
}

// Percentile returns the p-th percentile (0..100) using linear interpolation
// between closest ranks, the same definition numpy uses by default.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// WeightedSum returns the dot product of values and weights.
func WeightedSum(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	return floats.Dot(values, weights)
}

// SharpeRatio annualizes mean periodic return, subtracts the risk-free rate and
// divides by annualized volatility. Zero volatility yields 0.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultTradingDays
	}
	volatility := AnnualizedVolatility(returns, periodsPerYear)
	if volatility <= 0 {
		return 0
	}
	excess := Mean(returns)*float64(periodsPerYear) - riskFreeRate
	return excess / volatility
}
