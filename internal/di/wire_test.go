package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/artifacts"
)

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)
	t.Cleanup(container.Close)

	assert.NotNil(t, container.HoldingRepo)
	assert.NotNil(t, container.LimitRepo)
	assert.NotNil(t, container.SnapshotRepo)
	assert.NotNil(t, container.PriceCache)
	assert.NotNil(t, container.AnalysisService)
	assert.NotNil(t, container.SnapshotRecorder)
	assert.NotNil(t, container.PDFReport)
	assert.NotNil(t, container.Dashboard)
	assert.NotNil(t, container.Scheduler)

	// No bucket configured
	assert.IsType(t, artifacts.NopPublisher{}, container.Publisher)
	assert.False(t, container.Publisher.Enabled())
}

func TestWire_JobsRunOnEmptyDatabases(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	// No holdings: the snapshot is skipped without touching the network
	assert.NoError(t, jobs.PerformanceSnapshot.Run())
	assert.NoError(t, jobs.PriceCachePrune.Run())
	assert.NoError(t, jobs.CheckDatabases.Run())

	families, err := container.Registry.Gather()
	require.NoError(t, err)

	var runs float64
	for _, mf := range families {
		if mf.GetName() != "riskdesk_analysis_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == "no_data" {
					runs += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, runs)
}
