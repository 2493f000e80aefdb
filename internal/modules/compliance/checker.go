// Package compliance evaluates portfolio metrics against configured risk limits.
package compliance

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// Checker turns limit breaches into alerts. It is stateless.
type Checker struct {
	log zerolog.Logger
}

// NewChecker creates a compliance checker
func NewChecker(log zerolog.Logger) *Checker {
	return &Checker{
		log: log.With().Str("component", "compliance").Logger(),
	}
}

// observation is the value a limit is compared against, plus what it refers to.
type observation struct {
	value  float64
	symbol string
	sector string
}

// Check evaluates every limit in order and returns one alert per breached limit.
// Limits on unknown metrics, or on metrics with nothing to observe, produce no alert.
func (c *Checker) Check(m *metrics.PortfolioMetrics, limits []domain.RiskLimit) []domain.Alert {
	alerts := []domain.Alert{}
	if m == nil {
		return alerts
	}

	for _, limit := range limits {
		obs, ok := observe(m, limit.Metric)
		if !ok {
			if !limit.Metric.IsKnown() {
				c.log.Debug().Str("metric", string(limit.Metric)).Msg("Ignoring limit on unknown metric")
			}
			continue
		}

		var severity domain.Severity
		switch {
		case obs.value > limit.LimitValue:
			severity = domain.SeverityDanger
		case obs.value > limit.AlertThreshold:
			severity = domain.SeverityWarning
		default:
			continue
		}

		alert := domain.Alert{
			Severity:  severity,
			Metric:    limit.Metric,
			Observed:  obs.value,
			Limit:     limit.LimitValue,
			Threshold: limit.AlertThreshold,
			Symbol:    obs.symbol,
			Sector:    obs.sector,
		}
		alert.Message = message(alert)
		alerts = append(alerts, alert)
	}

	if len(alerts) > 0 {
		c.log.Info().Int("alerts", len(alerts)).Msg("Risk limits breached")
	}
	return alerts
}

func observe(m *metrics.PortfolioMetrics, metric domain.MetricName) (observation, bool) {
	switch metric {
	case domain.MetricPortfolioVaR95:
		return observation{value: math.Abs(m.VaR95)}, true
	case domain.MetricIndividualWeight:
		top, ok := m.MaxWeightPosition()
		if !ok {
			return observation{}, false
		}
		return observation{value: top.Weight / 100, symbol: top.Symbol}, true
	case domain.MetricSectorConcentration:
		top, ok := m.MaxSectorWeight()
		if !ok {
			return observation{}, false
		}
		return observation{value: top.Weight / 100, sector: top.Sector}, true
	default:
		return observation{}, false
	}
}

func message(a domain.Alert) string {
	verb := "approaching"
	if a.Severity == domain.SeverityDanger {
		verb = "exceeds"
	}

	var subject string
	switch a.Metric {
	case domain.MetricPortfolioVaR95:
		subject = "Portfolio VaR"
	case domain.MetricIndividualWeight:
		subject = a.Symbol + " weight"
	case domain.MetricSectorConcentration:
		subject = a.Sector + " sector weight"
	default:
		subject = string(a.Metric)
	}
	return fmt.Sprintf("%s (%s) %s limit (%s)", subject, percent(a.Observed), verb, percent(a.Limit))
}

// percent formats a fraction with two decimals, 0.0412 -> "4.12%".
func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
