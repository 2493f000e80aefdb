package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/artifacts"
	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/reports"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
	testingpkg "github.com/aristath/riskdesk/internal/testing"
)

type fakeRecorder struct {
	err   error
	calls int
}

func (f *fakeRecorder) RecordSnapshot(ctx context.Context) (snapshots.Snapshot, *analysis.Result, error) {
	f.calls++
	if f.err != nil {
		return snapshots.Snapshot{}, nil, f.err
	}
	at := time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)
	return snapshots.Snapshot{Date: at, TotalValue: 1250},
		&analysis.Result{RunID: "run-9", GeneratedAt: at, Metrics: &metrics.PortfolioMetrics{TotalValue: 1250}},
		nil
}

type fakeReport struct {
	err error
}

func (f *fakeReport) Produce(ctx context.Context, m *metrics.PortfolioMetrics, alerts []domain.Alert) (reports.Document, error) {
	if f.err != nil {
		return reports.Document{}, f.err
	}
	return reports.Document{Filename: "portfolio_report_20240315.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

type fakePublisher struct {
	enabled   bool
	published []string
	err       error
}

func (f *fakePublisher) Enabled() bool { return f.enabled }

func (f *fakePublisher) PublishReport(ctx context.Context, runID string, at time.Time, doc reports.Document) (artifacts.Artifact, error) {
	if f.err != nil {
		return artifacts.Artifact{}, f.err
	}
	key := runID + "@" + at.Format("2006-01-02")
	f.published = append(f.published, key)
	return artifacts.Artifact{Key: key}, nil
}

func (f *fakePublisher) List(ctx context.Context) ([]artifacts.Artifact, error) {
	return nil, nil
}

func TestPerformanceSnapshotJob_Publishes(t *testing.T) {
	recorder := &fakeRecorder{}
	publisher := &fakePublisher{enabled: true}
	job := NewPerformanceSnapshotJob(recorder, &fakeReport{}, publisher, time.Minute, zerolog.Nop())

	require.NoError(t, job.Run())

	assert.Equal(t, "performance_snapshot", job.Name())
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, []string{"run-9@2024-03-15"}, publisher.published)
}

func TestPerformanceSnapshotJob_PublisherDisabled(t *testing.T) {
	publisher := &fakePublisher{}
	job := NewPerformanceSnapshotJob(&fakeRecorder{}, &fakeReport{err: errors.New("must not render")}, publisher, 0, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Empty(t, publisher.published)
}

func TestPerformanceSnapshotJob_NilPublisher(t *testing.T) {
	job := NewPerformanceSnapshotJob(&fakeRecorder{}, &fakeReport{}, nil, 0, zerolog.Nop())

	assert.NoError(t, job.Run())
}

func TestPerformanceSnapshotJob_NoData(t *testing.T) {
	job := NewPerformanceSnapshotJob(&fakeRecorder{err: metrics.ErrNoData}, &fakeReport{}, &fakePublisher{enabled: true}, 0, zerolog.Nop())

	assert.NoError(t, job.Run())
}

func TestPerformanceSnapshotJob_Errors(t *testing.T) {
	recordErr := NewPerformanceSnapshotJob(&fakeRecorder{err: errors.New("locked")}, &fakeReport{}, nil, 0, zerolog.Nop())
	assert.EqualError(t, recordErr.Run(), "locked")

	renderErr := NewPerformanceSnapshotJob(&fakeRecorder{}, &fakeReport{err: errors.New("font")}, &fakePublisher{enabled: true}, 0, zerolog.Nop())
	assert.ErrorContains(t, renderErr.Run(), "font")

	publishErr := NewPerformanceSnapshotJob(&fakeRecorder{}, &fakeReport{}, &fakePublisher{enabled: true, err: errors.New("denied")}, 0, zerolog.Nop())
	assert.EqualError(t, publishErr.Run(), "denied")
}

type fakePruner struct {
	cutoff time.Time
	err    error
}

func (f *fakePruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestPriceCachePruneJob(t *testing.T) {
	pruner := &fakePruner{}
	job := NewPriceCachePruneJob(pruner, 0, zerolog.Nop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run())

	assert.Equal(t, "price_cache_prune", job.Name())
	assert.Equal(t, now.Add(-DefaultPriceCacheMaxAge), pruner.cutoff)
}

func TestPriceCachePruneJob_Error(t *testing.T) {
	job := NewPriceCachePruneJob(&fakePruner{err: errors.New("busy")}, time.Hour, zerolog.Nop())

	assert.EqualError(t, job.Run(), "busy")
}

func TestCheckWALCheckpointsJob(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "portfolio")
	defer cleanup()

	var out bytes.Buffer
	job := NewCheckWALCheckpointsJob(map[string]*database.DB{"portfolio": db, "cache": nil}, zerolog.New(&out))

	require.NoError(t, job.Run())
	assert.Equal(t, "check_wal_checkpoints", job.Name())
	assert.Contains(t, out.String(), `"checked":1`)
}

func TestCheckDatabasesJob(t *testing.T) {
	portfolioDB, cleanupPortfolio := testingpkg.NewTestDB(t, "portfolio")
	defer cleanupPortfolio()
	cacheDB, cleanupCache := testingpkg.NewTestDB(t, "cache")
	defer cleanupCache()

	job := NewCheckDatabasesJob(map[string]*database.DB{"portfolio": portfolioDB, "cache": cacheDB}, zerolog.Nop())

	assert.NoError(t, job.Run())
	assert.Equal(t, "check_databases", job.Name())
}

func TestCheckDatabasesJob_ClosedDatabase(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "portfolio")
	cleanup()

	job := NewCheckDatabasesJob(map[string]*database.DB{"portfolio": db}, zerolog.Nop())

	assert.Error(t, job.Run())
}

type fakeBackuper struct {
	key string
	err error
}

func (f *fakeBackuper) CreateAndUploadBackup(ctx context.Context) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("backup without deadline")
	}
	return f.key, f.err
}

func TestBackupDatabasesJob(t *testing.T) {
	job := NewBackupDatabasesJob(&fakeBackuper{key: "riskdesk/backups/x.tar.gz"}, zerolog.Nop())
	assert.Equal(t, "backup_databases", job.Name())
	assert.NoError(t, job.Run())

	failing := NewBackupDatabasesJob(&fakeBackuper{err: errors.New("upload failed")}, zerolog.Nop())
	assert.EqualError(t, failing.Run(), "upload failed")
}
