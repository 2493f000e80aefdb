package metrics

import (
	"fmt"
	"time"
)

// PositionSnapshot is the valuation of one holding at analysis time.
type PositionSnapshot struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	CurrentPrice  float64 `json:"current_price"`
	CurrentValue  float64 `json:"current_value"`
	CostBasis     float64 `json:"cost_basis"`
	PnL           float64 `json:"pnl"`
	PnLPct        float64 `json:"pnl_pct"`
	Weight        float64 `json:"weight"` // percent of total value
	AssetClass    string  `json:"asset_class"`
	Sector        string  `json:"sector"`
}

// SectorWeight is the summed weight (percent) of all positions in a sector.
type SectorWeight struct {
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// PerformancePoint is one date of the static-weight portfolio value path.
type PerformancePoint struct {
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	ReturnPct float64   `json:"return_pct"` // cumulative, relative to the first date
}

// CorrelationMatrix holds pairwise Pearson correlations of daily returns.
// Values[i][j] is the correlation between Symbols[i] and Symbols[j].
type CorrelationMatrix struct {
	Symbols []string    `json:"symbols"`
	Values  [][]float64 `json:"values"`
}

// IsEmpty reports whether no correlation could be computed
func (c CorrelationMatrix) IsEmpty() bool {
	return len(c.Symbols) == 0
}

// At returns the correlation between two symbols.
func (c CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, s := range c.Symbols {
		if s == a && i < 0 {
			i = k
		}
		if s == b && j < 0 {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Values[i][j], true
}

// PortfolioMetrics is the full output of one analysis run.
type PortfolioMetrics struct {
	Positions      []PositionSnapshot `json:"positions"`
	TotalValue     float64            `json:"total_value"`
	TotalCostBasis float64            `json:"total_cost_basis"`
	TotalPnL       float64            `json:"total_pnl"`
	TotalPnLPct    float64            `json:"total_pnl_pct"`
	Volatility     float64            `json:"volatility"`
	VaR95          float64            `json:"var_95"`
	MaxDrawdown    float64            `json:"max_drawdown"`
	SharpeRatio    float64            `json:"sharpe_ratio"`
	Correlation    CorrelationMatrix  `json:"correlation"`
	SectorWeights  []SectorWeight     `json:"sector_weights"`
	Performance    []PerformancePoint `json:"performance"`
	Observations   int                `json:"observations"` // aligned price rows
}

// MaxWeightPosition returns the position with the largest weight.
// Ties go to the first position in snapshot order.
func (m *PortfolioMetrics) MaxWeightPosition() (PositionSnapshot, bool) {
	if m == nil || len(m.Positions) == 0 {
		return PositionSnapshot{}, false
	}
	best := m.Positions[0]
	for _, p := range m.Positions[1:] {
		if p.Weight > best.Weight {
			best = p
		}
	}
	return best, true
}

// MaxSectorWeight returns the sector with the largest weight.
// Ties go to the sector that appears first.
func (m *PortfolioMetrics) MaxSectorWeight() (SectorWeight, bool) {
	if m == nil || len(m.SectorWeights) == 0 {
		return SectorWeight{}, false
	}
	best := m.SectorWeights[0]
	for _, s := range m.SectorWeights[1:] {
		if s.Weight > best.Weight {
			best = s
		}
	}
	return best, true
}

// String summarizes the headline numbers for logs.
func (m *PortfolioMetrics) String() string {
	return fmt.Sprintf("value=%.2f vol=%.4f var95=%.4f mdd=%.4f sharpe=%.2f",
		m.TotalValue, m.Volatility, m.VaR95, m.MaxDrawdown, m.SharpeRatio)
}
