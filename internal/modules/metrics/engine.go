// Package metrics turns holdings and price history into portfolio risk and
// performance metrics.
package metrics

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/sectors"
	"github.com/aristath/riskdesk/pkg/formulas"
)

var (
	// ErrNoData is returned when there are no holdings to analyze.
	ErrNoData = errors.New("no holdings to analyze")
	// ErrInvalidPrice is returned for non-finite or negative closing prices.
	ErrInvalidPrice = errors.New("invalid price data")
)

// VaRPercentile is the lower-tail percentile reported as the 95% VaR.
const VaRPercentile = 5.0

// Options configures the engine
type Options struct {
	RiskFreeRate       float64 // annual
	TradingDaysPerYear int
}

// DefaultOptions returns a 2% risk-free rate and 252 trading days.
func DefaultOptions() Options {
	return Options{
		RiskFreeRate:       0.02,
		TradingDaysPerYear: formulas.DefaultTradingDays,
	}
}

// Engine computes PortfolioMetrics. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	opts    Options
	sectors domain.SectorLookup
	log     zerolog.Logger
}

// NewEngine creates a metrics engine. A nil sector lookup maps every symbol to
// sectors.Unknown.
func NewEngine(opts Options, sectorLookup domain.SectorLookup, log zerolog.Logger) *Engine {
	if opts.TradingDaysPerYear <= 0 {
		opts.TradingDaysPerYear = formulas.DefaultTradingDays
	}
	return &Engine{
		opts:    opts,
		sectors: sectorLookup,
		log:     log.With().Str("component", "metrics_engine").Logger(),
	}
}

// Compute values every holding against its latest close and derives the
// portfolio risk metrics from the aligned price history.
//
// Weights are fixed at analysis time and applied across the whole history
// (static-weight approximation). Missing prices value a holding at 0; fewer
// than two aligned dates leave every statistic at 0.
func (e *Engine) Compute(holdings []domain.Holding, prices map[string]domain.PriceSeries) (*PortfolioMetrics, error) {
	if len(holdings) == 0 {
		return nil, ErrNoData
	}

	symbols := uniqueSymbols(holdings)
	for _, symbol := range symbols {
		if err := validateSeries(symbol, prices[symbol]); err != nil {
			return nil, err
		}
	}

	result := &PortfolioMetrics{
		Correlation:   CorrelationMatrix{Symbols: []string{}, Values: [][]float64{}},
		SectorWeights: []SectorWeight{},
		Performance:   []PerformancePoint{},
	}
	result.Positions = e.snapshots(holdings, prices)
	for _, p := range result.Positions {
		result.TotalValue += p.CurrentValue
		result.TotalCostBasis += p.CostBasis
	}
	for i := range result.Positions {
		if result.TotalValue > 0 {
			result.Positions[i].Weight = result.Positions[i].CurrentValue / result.TotalValue * 100
		}
	}
	result.TotalPnL = result.TotalValue - result.TotalCostBasis
	if result.TotalCostBasis > 0 {
		result.TotalPnLPct = result.TotalPnL / result.TotalCostBasis * 100
	}
	result.SectorWeights = sectorWeights(result.Positions)

	matrix := alignPrices(symbols, prices)
	result.Observations = matrix.len()
	if matrix.len() < 2 {
		e.log.Debug().
			Int("aligned_rows", matrix.len()).
			Int("symbols", len(matrix.symbols)).
			Msg("Insufficient aligned price history, risk statistics default to zero")
		return result, nil
	}

	weights := symbolWeights(matrix.symbols, result.Positions)

	returnsBySymbol := make([][]float64, len(matrix.symbols))
	for j := range matrix.symbols {
		returnsBySymbol[j] = formulas.CalculateReturns(matrix.column(j))
	}

	portfolioReturns := make([]float64, matrix.len()-1)
	dayReturns := make([]float64, len(matrix.symbols))
	for t := range portfolioReturns {
		for j := range matrix.symbols {
			dayReturns[j] = returnsBySymbol[j][t]
		}
		portfolioReturns[t] = formulas.WeightedSum(dayReturns, weights)
	}

	values := make([]float64, matrix.len())
	for t, row := range matrix.rows {
		values[t] = formulas.WeightedSum(row, weights)
	}

	tradingDays := e.opts.TradingDaysPerYear
	result.Volatility = formulas.AnnualizedVolatility(portfolioReturns, tradingDays)
	result.VaR95 = formulas.Percentile(portfolioReturns, VaRPercentile)
	result.MaxDrawdown = formulas.MaxDrawdown(values)
	result.SharpeRatio = formulas.SharpeRatio(portfolioReturns, e.opts.RiskFreeRate, tradingDays)
	result.Correlation = CorrelationMatrix{
		Symbols: append([]string(nil), matrix.symbols...),
		Values:  formulas.CorrelationMatrix(returnsBySymbol),
	}
	result.Performance = performanceSeries(matrix, values)

	e.log.Debug().
		Int("positions", len(result.Positions)).
		Int("aligned_rows", matrix.len()).
		Float64("total_value", result.TotalValue).
		Float64("volatility", result.Volatility).
		Float64("var_95", result.VaR95).
		Msg("Computed portfolio metrics")

	return result, nil
}

func (e *Engine) sectorOf(symbol string) string {
	if e.sectors == nil {
		return sectors.Unknown
	}
	return e.sectors.SectorOf(symbol)
}

// snapshots values each holding; weights are filled in once the total is known.
func (e *Engine) snapshots(holdings []domain.Holding, prices map[string]domain.PriceSeries) []PositionSnapshot {
	out := make([]PositionSnapshot, 0, len(holdings))
	for _, h := range holdings {
		currentPrice, _ := prices[h.Symbol].Last()
		currentValue := h.Quantity * currentPrice
		costBasis := h.Quantity * h.PurchasePrice
		pnl := currentValue - costBasis

		pnlPct := 0.0
		if costBasis > 0 {
			pnlPct = pnl / costBasis * 100
		}

		out = append(out, PositionSnapshot{
			Symbol:        h.Symbol,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			CurrentPrice:  currentPrice,
			CurrentValue:  currentValue,
			CostBasis:     costBasis,
			PnL:           pnl,
			PnLPct:        pnlPct,
			AssetClass:    h.AssetClass,
			Sector:        e.sectorOf(h.Symbol),
		})
	}
	return out
}

// uniqueSymbols returns holding symbols in order of first occurrence.
func uniqueSymbols(holdings []domain.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if seen[h.Symbol] {
			continue
		}
		seen[h.Symbol] = true
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

// symbolWeights returns the fractional weight of each matrix column. Holdings that
// share a symbol contribute the sum of their weights.
func symbolWeights(symbols []string, positions []PositionSnapshot) []float64 {
	index := make(map[string]int, len(symbols))
	for j, s := range symbols {
		index[s] = j
	}
	weights := make([]float64, len(symbols))
	for _, p := range positions {
		if j, ok := index[p.Symbol]; ok {
			weights[j] += p.Weight / 100
		}
	}
	return weights
}

// sectorWeights groups position weights by sector in order of first appearance.
func sectorWeights(positions []PositionSnapshot) []SectorWeight {
	index := make(map[string]int)
	out := []SectorWeight{}
	for _, p := range positions {
		i, ok := index[p.Sector]
		if !ok {
			i = len(out)
			index[p.Sector] = i
			out = append(out, SectorWeight{Sector: p.Sector})
		}
		out[i].Value += p.CurrentValue
		out[i].Weight += p.Weight
	}
	return out
}

// performanceSeries expresses the value path as cumulative percent change from
// its first date. It is empty when the first value is not positive.
func performanceSeries(matrix *priceMatrix, values []float64) []PerformancePoint {
	if len(values) == 0 || values[0] <= 0 {
		return []PerformancePoint{}
	}
	base := values[0]
	out := make([]PerformancePoint, len(values))
	for t, v := range values {
		out[t] = PerformancePoint{
			Date:      matrix.dates[t],
			Value:     v,
			ReturnPct: (v/base - 1) * 100,
		}
	}
	return out
}
