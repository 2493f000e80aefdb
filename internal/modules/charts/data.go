package charts

import (
	"math"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/pkg/formulas"
)

// ChartDataPoint is a single point of a JSON chart series
type ChartDataPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD format
	Value float64 `json:"value"` // Cumulative return in percent
}

// PerformanceSeries holds the performance line and its moving average for
// client-side charting.
type PerformanceSeries struct {
	Portfolio []ChartDataPoint `json:"portfolio"`
	Average   []ChartDataPoint `json:"average"`
}

// PerformanceData converts the metrics performance series to chart points.
// The average starts once SMAPeriod points are available.
func PerformanceData(m *metrics.PortfolioMetrics) PerformanceSeries {
	out := PerformanceSeries{Portfolio: []ChartDataPoint{}, Average: []ChartDataPoint{}}
	if m == nil {
		return out
	}

	values := make([]float64, len(m.Performance))
	for i, p := range m.Performance {
		values[i] = p.ReturnPct
		out.Portfolio = append(out.Portfolio, ChartDataPoint{
			Time:  p.Date.Format(domain.DateLayout),
			Value: p.ReturnPct,
		})
	}

	for i, v := range formulas.SMA(values, SMAPeriod) {
		if math.IsNaN(v) {
			continue
		}
		out.Average = append(out.Average, ChartDataPoint{Time: out.Portfolio[i].Time, Value: v})
	}
	return out
}
