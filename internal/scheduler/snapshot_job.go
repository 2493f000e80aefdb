package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/artifacts"
	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/reports"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
)

// SnapshotRecorder records the day's performance snapshot
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context) (snapshots.Snapshot, *analysis.Result, error)
}

// PerformanceSnapshotJob records a performance snapshot and publishes the
// day's PDF report when a publisher is enabled.
type PerformanceSnapshotJob struct {
	recorder  SnapshotRecorder
	report    reports.Producer
	publisher artifacts.Publisher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewPerformanceSnapshotJob creates a new PerformanceSnapshotJob
func NewPerformanceSnapshotJob(
	recorder SnapshotRecorder,
	report reports.Producer,
	publisher artifacts.Publisher,
	timeout time.Duration,
	log zerolog.Logger,
) *PerformanceSnapshotJob {
	if publisher == nil {
		publisher = artifacts.NopPublisher{}
	}
	return &PerformanceSnapshotJob{
		recorder:  recorder,
		report:    report,
		publisher: publisher,
		timeout:   timeout,
		log:       log.With().Str("job", "performance_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *PerformanceSnapshotJob) Name() string {
	return "performance_snapshot"
}

// Run executes the snapshot job
func (j *PerformanceSnapshotJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	snapshot, result, err := j.recorder.RecordSnapshot(ctx)
	if errors.Is(err, metrics.ErrNoData) {
		j.log.Info().Msg("No holdings recorded, skipping snapshot")
		return nil
	}
	if err != nil {
		return err
	}

	if !j.publisher.Enabled() || j.report == nil {
		return nil
	}

	doc, err := j.report.Produce(ctx, result.Metrics, result.Alerts)
	if err != nil {
		return fmt.Errorf("failed to render report for %s: %w", snapshot.Date.Format("2006-01-02"), err)
	}
	artifact, err := j.publisher.PublishReport(ctx, result.RunID, result.GeneratedAt, doc)
	if err != nil {
		return err
	}

	j.log.Info().Str("key", artifact.Key).Msg("Daily report published")
	return nil
}
