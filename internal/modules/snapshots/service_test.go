package snapshots

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

type stubRunner struct {
	result *analysis.Result
	err    error
}

func (s *stubRunner) Run(ctx context.Context) (*analysis.Result, error) {
	return s.result, s.err
}

func TestRecorder_RecordSnapshot(t *testing.T) {
	runner := &stubRunner{result: &analysis.Result{
		RunID:       "run-42",
		GeneratedAt: at(7),
		Metrics: &metrics.PortfolioMetrics{
			TotalValue:     1250,
			TotalCostBasis: 1000,
			TotalPnL:       250,
			Volatility:     0.12,
			VaR95:          -0.018,
		},
		Alerts: []domain.Alert{{Severity: domain.SeverityWarning}},
	}}
	repo := newRepo(t)
	recorder := NewRecorder(runner, repo, zerolog.Nop())
	recorder.now = func() time.Time { return at(7) }

	snapshot, result, err := recorder.RecordSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-42", result.RunID)
	assert.Equal(t, 1250.0, snapshot.TotalValue)
	assert.Equal(t, 1, snapshot.AlertCount)

	stored, ok, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-42", stored.RunID)
	assert.Equal(t, -0.018, stored.VaR95)
	assert.Equal(t, 7, stored.Date.Day())
}

func TestRecorder_NoData(t *testing.T) {
	repo := newRepo(t)
	recorder := NewRecorder(&stubRunner{err: metrics.ErrNoData}, repo, zerolog.Nop())

	_, _, err := recorder.RecordSnapshot(context.Background())
	assert.ErrorIs(t, err, metrics.ErrNoData)

	history, err := repo.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}
