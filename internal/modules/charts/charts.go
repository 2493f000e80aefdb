// Package charts renders portfolio metrics as PNG charts.
package charts

import (
	"context"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// ChartKind identifies one of the dashboard charts
type ChartKind string

const (
	KindAllocation  ChartKind = "allocation"
	KindSector      ChartKind = "sector"
	KindPerformance ChartKind = "performance"
	KindRisk        ChartKind = "risk"
	KindCorrelation ChartKind = "correlation"
)

// AllKinds lists chart kinds in dashboard order
var AllKinds = []ChartKind{KindAllocation, KindSector, KindPerformance, KindRisk, KindCorrelation}

// Artifact is one rendered chart. URL is where a browser can load it: a
// /static/ path for file charts or a data: URL for embedded ones.
type Artifact struct {
	Kind        ChartKind `json:"kind"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	Data        []byte    `json:"-"`
}

// Producer renders the charts for one analysis run. Charts whose inputs are
// empty (no performance series, no correlation matrix) are omitted.
type Producer interface {
	Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (map[ChartKind]Artifact, error)
}

// Filename returns the PNG file name used for a chart kind
func Filename(kind ChartKind) string {
	return string(kind) + "_chart.png"
}
