package domain

import "context"

// HoldingsStore persists position records. Implementations carry no business logic.
type HoldingsStore interface {
	ListHoldings(ctx context.Context) ([]Holding, error)
	AddHolding(ctx context.Context, h Holding) error
}

// RiskLimitsStore persists the configured risk limits.
// SetLimits replaces the full set atomically.
type RiskLimitsStore interface {
	GetLimits(ctx context.Context) ([]RiskLimit, error)
	SetLimits(ctx context.Context, limits []RiskLimit) error
}

// PriceProvider returns daily closing prices for a set of symbols over a lookback
// period such as "1y" or "6mo". Unknown or delisted symbols map to an empty series
// instead of failing the whole batch.
type PriceProvider interface {
	Fetch(ctx context.Context, symbols []string, period string) (map[string]PriceSeries, error)
}

// SectorLookup maps a symbol to its sector.
type SectorLookup interface {
	SectorOf(symbol string) string
}
