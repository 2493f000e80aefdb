package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/config"
	"github.com/aristath/riskdesk/internal/di"
	"github.com/aristath/riskdesk/internal/scheduler"
)

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:            dir,
		StaticDir:          filepath.Join(dir, "static"),
		Port:               8001,
		DevMode:            true,
		RiskFreeRate:       0.02,
		TradingDaysPerYear: 252,
		PricePeriod:        "1y",
		PriceCacheTTL:      time.Hour,
		AnalysisTimeout:    5 * time.Second,
		SnapshotSchedule:   "0 30 22 * * MON-FRI",
		Artifacts:          &config.ArtifactConfig{},
	}
	log := zerolog.Nop()

	container, _, err := di.Wire(cfg, log)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	s := New(Config{Log: log, Config: cfg, Container: container})
	s.systemHandlers.systemStats = func() (float64, float64) { return 12.5, 40 }
	return s, container
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHealth_DatabaseClosed(t *testing.T) {
	s, container := newTestServer(t)
	require.NoError(t, container.CacheDB.Close())

	rec := do(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, http.MethodGet, "/health")
	do(t, s, http.MethodGet, "/api/jobs/")

	rec := do(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `riskdesk_http_requests_total{code="200",method="GET",route="/health"} 1`)
	assert.Contains(t, body, "riskdesk_http_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestSystemStatus(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/system/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 0, status.Holdings)
	assert.Empty(t, status.LastSnapshot)
	assert.Equal(t, 12.5, status.CPUPercent)
	assert.Equal(t, 40.0, status.MemoryPercent)
	require.Len(t, status.Databases, 2)
	assert.Equal(t, "cache", status.Databases[0].Name)
	assert.Equal(t, "portfolio", status.Databases[1].Name)
	assert.Positive(t, status.Databases[1].PageCount)
}

func TestJobs(t *testing.T) {
	s, container := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/jobs/")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Jobs []scheduler.JobInfo `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	names := make([]string, 0, len(list.Jobs))
	for _, job := range list.Jobs {
		names = append(names, job.Name)
	}
	assert.Equal(t, []string{
		"check_databases",
		"check_wal_checkpoints",
		"performance_snapshot",
		"price_cache_prune",
	}, names)
	assert.Equal(t, di.DatabaseIntegritySchedule, list.Jobs[0].Schedule)
	assert.Nil(t, list.Jobs[0].LastRun)

	rec = do(t, s, http.MethodPost, "/api/jobs/check_databases")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)

	// The manual run goes through the scheduler and is recorded there
	for _, job := range container.Scheduler.Jobs() {
		if job.Name == "check_databases" {
			assert.NotNil(t, job.LastRun)
			assert.Empty(t, job.LastErr)
		}
	}

	rec = do(t, s, http.MethodPost, "/api/jobs/rebalance")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModuleRoutesMounted(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/portfolio/holdings", http.StatusOK},
		{http.MethodGet, "/api/portfolio/limits", http.StatusOK},
		{http.MethodGet, "/api/analysis", http.StatusNotFound}, // empty portfolio
		{http.MethodGet, "/api/risk/summary", http.StatusNotFound},
		{http.MethodGet, "/api/reports/pdf", http.StatusNotFound},
		{http.MethodGet, "/api/performance/history", http.StatusOK},
		{http.MethodGet, "/api/artifacts", http.StatusOK},
		{http.MethodGet, "/static/missing.png", http.StatusNotFound},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := do(t, s, tc.method, tc.target)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/analysis", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, minRequestTimeout, requestTimeout(5*time.Second))
	assert.Equal(t, 135*time.Second, requestTimeout(2*time.Minute))
}
