package metrics

import (
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/sectors"
)

var pbtSymbols = []string{"AAPL", "MSFT", "SPY", "BND", "GLD"}

func pbtEngine() *Engine {
	return NewEngine(DefaultOptions(), sectors.DefaultTable(), zerolog.Nop())
}

// flatPortfolio builds one holding per quantity, each priced flat at prices[i]
func flatPortfolio(quantities, prices []float64) ([]domain.Holding, map[string]domain.PriceSeries) {
	holdings := make([]domain.Holding, len(quantities))
	priceMap := make(map[string]domain.PriceSeries, len(quantities))
	for i, q := range quantities {
		symbol := pbtSymbols[i]
		holdings[i] = holding(symbol, q, 100)
		priceMap[symbol] = series(prices[i], prices[i], prices[i])
	}
	return holdings, priceMap
}

func TestEngine_WeightsSumTo100(t *testing.T) {
	properties := gopter.NewProperties(nil)
	engine := pbtEngine()

	properties.Property("weights sum to 100", prop.ForAll(
		func(n int, quantities, prices []float64) bool {
			holdings, priceMap := flatPortfolio(quantities[:n], prices[:n])
			m, err := engine.Compute(holdings, priceMap)
			if err != nil {
				return false
			}
			sum := 0.0
			for _, p := range m.Positions {
				sum += p.Weight
			}
			return math.Abs(sum-100) < 1e-9
		},
		gen.IntRange(1, len(pbtSymbols)),
		gen.SliceOfN(len(pbtSymbols), gen.Float64Range(0.1, 1000)),
		gen.SliceOfN(len(pbtSymbols), gen.Float64Range(1, 1000)),
	))

	properties.TestingRun(t)
}

func TestEngine_PriceIncreaseRaisesWeight(t *testing.T) {
	properties := gopter.NewProperties(nil)
	engine := pbtEngine()

	properties.Property("raising one price raises its weight and never lowers total value", prop.ForAll(
		func(idx int, factor float64, quantities, prices []float64) bool {
			holdings, before := flatPortfolio(quantities, prices)
			m1, err := engine.Compute(holdings, before)
			if err != nil {
				return false
			}

			bumped := append([]float64(nil), prices...)
			bumped[idx] *= factor
			_, after := flatPortfolio(quantities, bumped)
			m2, err := engine.Compute(holdings, after)
			if err != nil {
				return false
			}

			return m2.Positions[idx].Weight > m1.Positions[idx].Weight &&
				m2.TotalValue >= m1.TotalValue
		},
		gen.IntRange(0, len(pbtSymbols)-1),
		gen.Float64Range(1.01, 3),
		gen.SliceOfN(len(pbtSymbols), gen.Float64Range(0.1, 1000)),
		gen.SliceOfN(len(pbtSymbols), gen.Float64Range(1, 1000)),
	))

	properties.TestingRun(t)
}

func TestEngine_ComputeIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)
	engine := pbtEngine()

	properties.Property("identical inputs give identical metrics", prop.ForAll(
		func(a, b, c []float64) bool {
			holdings := []domain.Holding{
				holding("AAPL", 10, 150),
				holding("SPY", 5, 400),
				holding("BND", 20, 80),
			}
			prices := map[string]domain.PriceSeries{
				"AAPL": series(a...),
				"SPY":  series(b...),
				"BND":  series(c...),
			}
			m1, err1 := engine.Compute(holdings, prices)
			m2, err2 := engine.Compute(holdings, prices)
			return err1 == nil && err2 == nil && reflect.DeepEqual(m1, m2)
		},
		gen.SliceOfN(10, gen.Float64Range(50, 150)),
		gen.SliceOfN(10, gen.Float64Range(300, 500)),
		gen.SliceOfN(10, gen.Float64Range(70, 90)),
	))

	properties.TestingRun(t)
}
