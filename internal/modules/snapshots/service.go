package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/analysis"
)

// Recorder runs an analysis and stores the day's snapshot
type Recorder struct {
	runner analysis.Runner
	repo   *Repository
	now    func() time.Time
	log    zerolog.Logger
}

// NewRecorder creates a snapshot recorder
func NewRecorder(runner analysis.Runner, repo *Repository, log zerolog.Logger) *Recorder {
	return &Recorder{
		runner: runner,
		repo:   repo,
		now:    time.Now,
		log:    log.With().Str("service", "snapshots").Logger(),
	}
}

// RecordSnapshot analyzes the portfolio and stores the result under the run
// date. The analysis result is returned so callers can publish artifacts from it.
func (r *Recorder) RecordSnapshot(ctx context.Context) (Snapshot, *analysis.Result, error) {
	result, err := r.runner.Run(ctx)
	if err != nil {
		return Snapshot{}, nil, err
	}

	m := result.Metrics
	snapshot, err := r.repo.Record(ctx, Snapshot{
		Date:           result.GeneratedAt,
		TotalValue:     m.TotalValue,
		TotalCostBasis: m.TotalCostBasis,
		TotalPnL:       m.TotalPnL,
		Volatility:     m.Volatility,
		VaR95:          m.VaR95,
		MaxDrawdown:    m.MaxDrawdown,
		SharpeRatio:    m.SharpeRatio,
		AlertCount:     len(result.Alerts),
		RunID:          result.RunID,
		RecordedAt:     r.now(),
	})
	if err != nil {
		return Snapshot{}, result, fmt.Errorf("failed to record snapshot: %w", err)
	}

	r.log.Info().
		Str("run_id", result.RunID).
		Float64("total_value", snapshot.TotalValue).
		Float64("daily_return", snapshot.DailyReturn).
		Msg("Performance snapshot recorded")
	return snapshot, result, nil
}
