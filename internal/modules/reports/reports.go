// Package reports renders an analysis run as a PDF or HTML document.
package reports

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// ErrNoMetrics is returned when a report is requested without analysis output
var ErrNoMetrics = errors.New("no metrics to report")

// Document is a rendered report
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Producer renders one analysis run into a document.
type Producer interface {
	Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (Document, error)
}

// Row is a label/value pair of the executive summary
type Row struct {
	Label string
	Value string
}

// HoldingColumns are the headers of the per-holding table
var HoldingColumns = []string{"Symbol", "Quantity", "Price", "Value", "Weight", "P&L", "P&L %"}

// Summary returns the executive summary rows in display order.
func Summary(m *metrics.PortfolioMetrics) []Row {
	return []Row{
		{Label: "Total Value", Value: FormatMoney(m.TotalValue)},
		{Label: "Cost Basis", Value: FormatMoney(m.TotalCostBasis)},
		{Label: "Total P&L", Value: FormatMoney(m.TotalPnL)},
		{Label: "Total P&L %", Value: FormatPercent(m.TotalPnLPct)},
		{Label: "Volatility (annualized)", Value: FormatPercent(m.Volatility * 100)},
		{Label: "VaR (95%, 1-day)", Value: FormatPercent(m.VaR95 * 100)},
		{Label: "Sharpe Ratio", Value: FormatRatio(m.SharpeRatio)},
		{Label: "Max Drawdown", Value: FormatPercent(m.MaxDrawdown * 100)},
	}
}

// HoldingRows returns one formatted row per position, matching HoldingColumns.
func HoldingRows(m *metrics.PortfolioMetrics) [][]string {
	rows := make([][]string, 0, len(m.Positions))
	for _, p := range m.Positions {
		rows = append(rows, []string{
			p.Symbol,
			FormatQuantity(p.Quantity),
			FormatMoney(p.CurrentPrice),
			FormatMoney(p.CurrentValue),
			FormatPercent(p.Weight),
			FormatMoney(p.PnL),
			FormatPercent(p.PnLPct),
		})
	}
	return rows
}

// Filename returns the download name of a report generated at t
func Filename(t time.Time, ext string) string {
	return "portfolio_report_" + t.Format("20060102") + "." + ext
}
