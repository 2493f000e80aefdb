// Package portfolio stores holdings and risk limits.
package portfolio

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aristath/riskdesk/internal/domain"
)

var (
	// ErrInvalidHolding is returned when a holding cannot be recorded
	ErrInvalidHolding = errors.New("invalid holding")
	// ErrInvalidLimit is returned when a limit set cannot be stored
	ErrInvalidLimit = errors.New("invalid risk limit")
)

// NormalizeSymbol upper-cases and trims a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateHolding checks a holding before it is stored. Quantity may be negative
// (short positions) but must be finite.
func ValidateHolding(h domain.Holding) error {
	switch {
	case NormalizeSymbol(h.Symbol) == "":
		return fmt.Errorf("%w: symbol is required", ErrInvalidHolding)
	case math.IsNaN(h.Quantity) || math.IsInf(h.Quantity, 0):
		return fmt.Errorf("%w: quantity must be finite", ErrInvalidHolding)
	case math.IsNaN(h.PurchasePrice) || math.IsInf(h.PurchasePrice, 0) || h.PurchasePrice < 0:
		return fmt.Errorf("%w: purchase price must be a non-negative number", ErrInvalidHolding)
	case h.PurchaseDate.IsZero():
		return fmt.Errorf("%w: purchase date is required", ErrInvalidHolding)
	}
	return nil
}

// ValidateLimits checks a full limit set. Unknown metric names are accepted and
// stay inert during compliance checks.
func ValidateLimits(limits []domain.RiskLimit) error {
	seen := make(map[domain.MetricName]bool, len(limits))
	for _, l := range limits {
		if strings.TrimSpace(string(l.Metric)) == "" {
			return fmt.Errorf("%w: metric is required", ErrInvalidLimit)
		}
		if seen[l.Metric] {
			return fmt.Errorf("%w: duplicate metric %s", ErrInvalidLimit, l.Metric)
		}
		seen[l.Metric] = true

		if !finiteNonNegative(l.LimitValue) || !finiteNonNegative(l.AlertThreshold) {
			return fmt.Errorf("%w: %s values must be non-negative numbers", ErrInvalidLimit, l.Metric)
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
