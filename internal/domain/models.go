// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in storage, APIs and reports.
const DateLayout = "2006-01-02"

// Holding is a recorded position. The metrics engine treats it as read-only input.
type Holding struct {
	ID            int64     `json:"id,omitempty"`
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	AssetClass    string    `json:"asset_class"`
}

// PricePoint is a single closing price
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a chronologically ordered sequence of closing prices for one symbol.
// Dates are strictly increasing.
type PriceSeries []PricePoint

// Last returns the most recent close, or false when the series is empty.
func (s PriceSeries) Last() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1].Close, true
}

// MetricName identifies an observed metric a risk limit applies to
type MetricName string

const (
	// MetricPortfolioVaR95 limits the absolute one-day 95% VaR of the portfolio
	MetricPortfolioVaR95 MetricName = "portfolio_var_95"
	// MetricIndividualWeight limits the largest single-position weight (fraction)
	MetricIndividualWeight MetricName = "individual_weight"
	// MetricSectorConcentration limits the largest single-sector weight (fraction)
	MetricSectorConcentration MetricName = "sector_concentration"
)

// KnownMetrics lists the metric names the compliance checker evaluates.
var KnownMetrics = []MetricName{
	MetricPortfolioVaR95,
	MetricIndividualWeight,
	MetricSectorConcentration,
}

// IsKnown reports whether the metric has an observed-value mapping.
func (m MetricName) IsKnown() bool {
	for _, k := range KnownMetrics {
		if k == m {
			return true
		}
	}
	return false
}

// RiskLimit is a configured hard limit plus a softer alert threshold.
type RiskLimit struct {
	Metric         MetricName `json:"metric"`
	LimitValue     float64    `json:"limit_value"`
	AlertThreshold float64    `json:"alert_threshold"`
}

// DefaultLimits builds the standard limit set. Thresholds sit at 80% of the
// VaR limit and 90% of the weight and sector limits.
func DefaultLimits(maxVaR, maxWeight, maxSector float64) []RiskLimit {
	return []RiskLimit{
		{Metric: MetricPortfolioVaR95, LimitValue: maxVaR, AlertThreshold: maxVaR * 0.8},
		{Metric: MetricIndividualWeight, LimitValue: maxWeight, AlertThreshold: maxWeight * 0.9},
		{Metric: MetricSectorConcentration, LimitValue: maxSector, AlertThreshold: maxSector * 0.9},
	}
}

// Severity of a compliance alert
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert is a compliance finding for one limit.
type Alert struct {
	Severity  Severity   `json:"type"`
	Metric    MetricName `json:"metric"`
	Observed  float64    `json:"observed"`
	Limit     float64    `json:"limit"`
	Threshold float64    `json:"threshold"`
	Symbol    string     `json:"symbol,omitempty"`
	Sector    string     `json:"sector,omitempty"`
	Message   string     `json:"message"`
}

func (a Alert) String() string {
	return fmt.Sprintf("[%s] %s", a.Severity, a.Message)
}
