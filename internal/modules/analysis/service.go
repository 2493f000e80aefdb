// Package analysis runs the full risk pipeline: holdings and limits from the
// store, prices from the provider, metrics, then compliance alerts.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/compliance"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// Run outcomes reported to the Recorder
const (
	OutcomeOK     = "ok"
	OutcomeNoData = "no_data"
	OutcomeError  = "error"
)

// Result is the output of one analysis run
type Result struct {
	RunID         string                    `json:"run_id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Metrics       *metrics.PortfolioMetrics `json:"metrics"`
	Alerts        []domain.Alert            `json:"alerts"`
	MissingPrices []string                  `json:"missing_prices"` // symbols valued at 0
}

// Runner runs an analysis. Handlers, jobs and the CLI depend on this.
type Runner interface {
	Run(ctx context.Context) (*Result, error)
}

// Config holds the per-run settings
type Config struct {
	Period       string        // price lookback, e.g. "1y"
	FetchTimeout time.Duration // bound on the provider call; 0 means none
}

// Service orchestrates an analysis run. It owns all I/O; the engine and
// checker stay pure.
type Service struct {
	holdings domain.HoldingsStore
	limits   domain.RiskLimitsStore
	prices   domain.PriceProvider
	engine   *metrics.Engine
	checker  *compliance.Checker
	recorder Recorder
	cfg      Config
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates the analysis service. A nil recorder records nothing.
func NewService(
	holdings domain.HoldingsStore,
	limits domain.RiskLimitsStore,
	prices domain.PriceProvider,
	engine *metrics.Engine,
	checker *compliance.Checker,
	recorder Recorder,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Service{
		holdings: holdings,
		limits:   limits,
		prices:   prices,
		engine:   engine,
		checker:  checker,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("service", "analysis").Logger(),
	}
}

// Run loads the portfolio, fetches prices and evaluates metrics and limits.
// It returns metrics.ErrNoData when there are no holdings.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := s.now()
	result, err := s.run(ctx)
	elapsed := s.now().Sub(start)

	switch {
	case err == nil:
		s.recorder.ObserveRun(OutcomeOK, elapsed)
		s.recorder.SetAlerts(result.Alerts)
	case errors.Is(err, metrics.ErrNoData):
		s.recorder.ObserveRun(OutcomeNoData, elapsed)
	default:
		s.recorder.ObserveRun(OutcomeError, elapsed)
	}
	return result, err
}

func (s *Service) run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	log := s.log.With().Str("run_id", runID).Logger()

	holdings, err := s.holdings.ListHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	if len(holdings) == 0 {
		return nil, metrics.ErrNoData
	}

	limits, err := s.limits.GetLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk limits: %w", err)
	}

	symbols := uniqueSymbols(holdings)
	prices := s.fetchPrices(ctx, symbols, log)

	m, err := s.engine.Compute(holdings, prices)
	if err != nil {
		return nil, err
	}
	alerts := s.checker.Check(m, limits)

	missing := []string{}
	for _, symbol := range symbols {
		if _, ok := prices[symbol].Last(); !ok {
			missing = append(missing, symbol)
		}
	}

	log.Info().
		Int("holdings", len(holdings)).
		Int("alerts", len(alerts)).
		Int("missing_prices", len(missing)).
		Str("metrics", m.String()).
		Msg("Analysis complete")

	return &Result{
		RunID:         runID,
		GeneratedAt:   s.now().UTC(),
		Metrics:       m,
		Alerts:        alerts,
		MissingPrices: missing,
	}, nil
}

// fetchPrices never fails the run: a provider error leaves every holding
// without a price.
func (s *Service) fetchPrices(ctx context.Context, symbols []string, log zerolog.Logger) map[string]domain.PriceSeries {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	prices, err := s.prices.Fetch(ctx, symbols, s.cfg.Period)
	if err != nil {
		s.recorder.PriceFetchFailed()
		log.Warn().Err(err).Strs("symbols", symbols).Msg("Price fetch failed, continuing without market data")
		return map[string]domain.PriceSeries{}
	}
	if prices == nil {
		return map[string]domain.PriceSeries{}
	}
	return prices
}

func uniqueSymbols(holdings []domain.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	return out
}
