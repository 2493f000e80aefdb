package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/pkg/formulas"
)

// SMAPeriod is the moving-average window drawn over the performance line
const SMAPeriod = 20

// chart dimensions
const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// renderAll renders every chart whose inputs are present
func renderAll(m *metrics.PortfolioMetrics) (map[ChartKind][]byte, error) {
	builders := map[ChartKind]func(*metrics.PortfolioMetrics) (*plot.Plot, error){
		KindAllocation:  allocationChart,
		KindSector:      sectorChart,
		KindPerformance: performanceChart,
		KindRisk:        riskChart,
		KindCorrelation: correlationChart,
	}

	out := make(map[ChartKind][]byte, len(builders))
	for _, kind := range AllKinds {
		if !hasInput(kind, m) {
			continue
		}
		p, err := builders[kind](m)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s chart: %w", kind, err)
		}
		png, err := encodePNG(p)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s chart: %w", kind, err)
		}
		out[kind] = png
	}
	return out, nil
}

// hasInput reports whether a chart has anything to draw
func hasInput(kind ChartKind, m *metrics.PortfolioMetrics) bool {
	switch kind {
	case KindPerformance:
		return len(m.Performance) > 0
	case KindCorrelation:
		return !m.Correlation.IsEmpty()
	case KindAllocation:
		return len(m.Positions) > 0
	case KindSector:
		return len(m.SectorWeights) > 0
	default:
		return true
	}
}

func encodePNG(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pieChart(title string, labels []string, values []float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	pie := &pieSlices{values: values}
	for i := range values {
		pie.colors = append(pie.colors, plotutil.Color(i))
	}
	p.Add(pie)

	p.Legend.Top = true
	for i, label := range labels {
		if values[i] <= 0 {
			continue
		}
		p.Legend.Add(fmt.Sprintf("%s %.1f%%", label, values[i]), swatch{color: pie.colors[i]})
	}
	return p
}

func allocationChart(m *metrics.PortfolioMetrics) (*plot.Plot, error) {
	labels := make([]string, len(m.Positions))
	values := make([]float64, len(m.Positions))
	for i, pos := range m.Positions {
		labels[i] = pos.Symbol
		values[i] = pos.Weight
	}
	return pieChart("Portfolio Allocation", labels, values), nil
}

func sectorChart(m *metrics.PortfolioMetrics) (*plot.Plot, error) {
	labels := make([]string, len(m.SectorWeights))
	values := make([]float64, len(m.SectorWeights))
	for i, s := range m.SectorWeights {
		labels[i] = s.Sector
		values[i] = s.Weight
	}
	return pieChart("Sector Allocation", labels, values), nil
}

func performanceChart(m *metrics.PortfolioMetrics) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Portfolio Performance"
	p.Y.Label.Text = "Cumulative return (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(m.Performance))
	returns := make([]float64, len(m.Performance))
	for i, pt := range m.Performance {
		pts[i].X = float64(pt.Date.Unix())
		pts[i].Y = pt.ReturnPct
		returns[i] = pt.ReturnPct
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(0)
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("Portfolio", line)

	if sma := formulas.SMA(returns, SMAPeriod); sma != nil {
		smaPts := make(plotter.XYs, 0, len(sma))
		for i, v := range sma {
			if math.IsNaN(v) {
				continue
			}
			smaPts = append(smaPts, plotter.XY{X: pts[i].X, Y: v})
		}
		smaLine, err := plotter.NewLine(smaPts)
		if err != nil {
			return nil, err
		}
		smaLine.Color = plotutil.Color(1)
		smaLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(smaLine)
		p.Legend.Add(fmt.Sprintf("%d-day average", SMAPeriod), smaLine)
	}
	p.Legend.Top = true
	return p, nil
}

// riskBar is one bar of the risk chart. Percent bars are scaled by 100.
type riskBar struct {
	Label string
	Value float64
}

// riskBars returns the risk chart bars in display order. The Sharpe ratio is
// unitless, so its label carries no percent sign.
func riskBars(m *metrics.PortfolioMetrics) []riskBar {
	return []riskBar{
		{Label: "Volatility (%)", Value: m.Volatility * 100},
		{Label: "VaR 95% (%)", Value: math.Abs(m.VaR95) * 100},
		{Label: "Max Drawdown (%)", Value: math.Abs(m.MaxDrawdown) * 100},
		{Label: "Sharpe Ratio", Value: m.SharpeRatio},
	}
}

func riskChart(m *metrics.PortfolioMetrics) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Risk Metrics"
	p.Y.Label.Text = "Value"

	bars := riskBars(m)
	names := make([]string, len(bars))
	points := make([]plotter.XY, len(bars))
	labels := make([]string, len(bars))
	for i, b := range bars {
		chart, err := plotter.NewBarChart(plotter.Values{b.Value}, vg.Points(40))
		if err != nil {
			return nil, err
		}
		chart.XMin = float64(i)
		chart.Color = plotutil.Color(i)
		chart.LineStyle.Width = vg.Length(0)
		p.Add(chart)

		names[i] = b.Label
		points[i] = plotter.XY{X: float64(i), Y: b.Value}
		labels[i] = fmt.Sprintf("%.2f", b.Value)
	}

	values, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return nil, err
	}
	p.Add(values)
	p.NominalX(names...)
	return p, nil
}

// correlationGrid adapts a correlation matrix to plotter.GridXYZ
type correlationGrid struct {
	values [][]float64
}

func (g correlationGrid) Dims() (c, r int)   { return len(g.values), len(g.values) }
func (g correlationGrid) Z(c, r int) float64 { return g.values[r][c] }
func (g correlationGrid) X(c int) float64    { return float64(c) }
func (g correlationGrid) Y(r int) float64    { return float64(r) }

func correlationChart(m *metrics.PortfolioMetrics) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Correlation Matrix"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	heat := plotter.NewHeatMap(correlationGrid{values: m.Correlation.Values}, cm.Palette(255))
	heat.Min, heat.Max = -1, 1
	heat.NaN = color.Transparent
	p.Add(heat)

	ticks := make([]plot.Tick, len(m.Correlation.Symbols))
	for i, s := range m.Correlation.Symbols {
		ticks[i] = plot.Tick{Value: float64(i), Label: s}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	for r, row := range m.Correlation.Values {
		for c, v := range row {
			labels, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    []plotter.XY{{X: float64(c), Y: float64(r)}},
				Labels: []string{fmt.Sprintf("%.2f", v)},
			})
			if err != nil {
				return nil, err
			}
			p.Add(labels)
		}
	}
	return p, nil
}
