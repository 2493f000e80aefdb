package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aristath/riskdesk/internal/domain"
)

// Recorder receives operational measurements of analysis runs.
type Recorder interface {
	ObserveRun(outcome string, elapsed time.Duration)
	SetAlerts(alerts []domain.Alert)
	PriceFetchFailed()
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) ObserveRun(string, time.Duration) {}
func (NopRecorder) SetAlerts([]domain.Alert)         {}
func (NopRecorder) PriceFetchFailed()                {}

// PrometheusRecorder exports run measurements as Prometheus collectors.
type PrometheusRecorder struct {
	runs          *prometheus.CounterVec
	duration      prometheus.Histogram
	alerts        *prometheus.GaugeVec
	fetchFailures prometheus.Counter
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskdesk_analysis_runs_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskdesk_analysis_duration_seconds",
			Help:    "Duration of analysis runs including the price fetch",
			Buckets: prometheus.DefBuckets,
		}),
		alerts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "riskdesk_alerts",
				Help: "Number of compliance alerts raised by the latest successful run",
			},
			[]string{"severity"},
		),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "riskdesk_price_fetch_failures_total",
			Help: "Total number of price provider failures",
		}),
	}
	reg.MustRegister(r.runs, r.duration, r.alerts, r.fetchFailures)

	// Expose every label from the start
	for _, outcome := range []string{OutcomeOK, OutcomeNoData, OutcomeError} {
		r.runs.WithLabelValues(outcome)
	}
	r.SetAlerts(nil)
	return r
}

// ObserveRun counts a run and records its duration
func (r *PrometheusRecorder) ObserveRun(outcome string, elapsed time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// SetAlerts replaces the alert gauges with the counts of the latest run
func (r *PrometheusRecorder) SetAlerts(alerts []domain.Alert) {
	counts := map[domain.Severity]int{
		domain.SeverityWarning: 0,
		domain.SeverityDanger:  0,
	}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	for severity, n := range counts {
		r.alerts.WithLabelValues(string(severity)).Set(float64(n))
	}
}

// PriceFetchFailed counts a provider failure
func (r *PrometheusRecorder) PriceFetchFailed() {
	r.fetchFailures.Inc()
}
