package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// Sample limits applied by Seeder
const (
	SampleMaxVaR    = 0.03
	SampleMaxWeight = 0.20
	SampleMaxSector = 0.40
)

// SampleHoldings is the demonstration portfolio
func SampleHoldings() []domain.Holding {
	date := func(s string) time.Time {
		t, _ := time.Parse(domain.DateLayout, s)
		return t
	}
	return []domain.Holding{
		{Symbol: "AAPL", Quantity: 10, PurchasePrice: 150, PurchaseDate: date("2024-01-15"), AssetClass: "Equity"},
		{Symbol: "MSFT", Quantity: 8, PurchasePrice: 300, PurchaseDate: date("2024-02-01"), AssetClass: "Equity"},
		{Symbol: "GOOGL", Quantity: 5, PurchasePrice: 140, PurchaseDate: date("2024-01-20"), AssetClass: "Equity"},
		{Symbol: "TSLA", Quantity: 3, PurchasePrice: 200, PurchaseDate: date("2024-03-01"), AssetClass: "Equity"},
		{Symbol: "SPY", Quantity: 20, PurchasePrice: 400, PurchaseDate: date("2024-01-10"), AssetClass: "ETF"},
		{Symbol: "BND", Quantity: 15, PurchasePrice: 80, PurchaseDate: date("2024-02-15"), AssetClass: "Bond ETF"},
		{Symbol: "GLD", Quantity: 5, PurchasePrice: 180, PurchaseDate: date("2024-03-15"), AssetClass: "Commodity ETF"},
	}
}

// holdingReplacer is the part of HoldingRepository the seeder needs
type holdingReplacer interface {
	ReplaceAll(ctx context.Context, holdings []domain.Holding) error
}

// Seeder loads the sample portfolio and its limits
type Seeder struct {
	holdings holdingReplacer
	limits   domain.RiskLimitsStore
	log      zerolog.Logger
}

// NewSeeder creates a seeder
func NewSeeder(holdings holdingReplacer, limits domain.RiskLimitsStore, log zerolog.Logger) *Seeder {
	return &Seeder{
		holdings: holdings,
		limits:   limits,
		log:      log.With().Str("service", "seeder").Logger(),
	}
}

// Seed replaces all holdings with the sample set and installs the sample limits.
func (s *Seeder) Seed(ctx context.Context) error {
	holdings := SampleHoldings()
	if err := s.holdings.ReplaceAll(ctx, holdings); err != nil {
		return fmt.Errorf("failed to seed holdings: %w", err)
	}
	if err := s.limits.SetLimits(ctx, domain.DefaultLimits(SampleMaxVaR, SampleMaxWeight, SampleMaxSector)); err != nil {
		return fmt.Errorf("failed to seed risk limits: %w", err)
	}

	s.log.Info().Int("holdings", len(holdings)).Msg("Loaded sample portfolio")
	return nil
}
