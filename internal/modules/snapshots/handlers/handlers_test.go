package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
)

type fakeHistory struct {
	snapshots []snapshots.Snapshot
	err       error
	lastLimit int
}

func (f *fakeHistory) History(ctx context.Context, limit int) ([]snapshots.Snapshot, error) {
	f.lastLimit = limit
	return f.snapshots, f.err
}

type fakeRecorder struct {
	err error
}

func (f *fakeRecorder) RecordSnapshot(ctx context.Context) (snapshots.Snapshot, *analysis.Result, error) {
	if f.err != nil {
		return snapshots.Snapshot{}, nil, f.err
	}
	return snapshots.Snapshot{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), TotalValue: 1250, RunID: "r"}, &analysis.Result{}, nil
}

func serve(h *Handler, method, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandleGetHistory(t *testing.T) {
	history := &fakeHistory{snapshots: []snapshots.Snapshot{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), TotalValue: 1000},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), TotalValue: 1100, DailyReturn: 0.1},
	}}
	h := NewHandler(history, &fakeRecorder{}, zerolog.Nop())

	w := serve(h, http.MethodGet, "/api/performance/history?limit=30")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, history.lastLimit)
	var body struct {
		Data []snapshots.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, 0.1, body.Data[1].DailyReturn)
}

func TestHandleGetHistory_DefaultLimit(t *testing.T) {
	history := &fakeHistory{snapshots: []snapshots.Snapshot{}}
	h := NewHandler(history, &fakeRecorder{}, zerolog.Nop())

	w := serve(h, http.MethodGet, "/api/performance/history")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxHistory, history.lastLimit)
	assert.JSONEq(t, `[]`, mustData(t, w))
}

func TestHandleGetHistory_BadLimit(t *testing.T) {
	h := NewHandler(&fakeHistory{}, &fakeRecorder{}, zerolog.Nop())

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/performance/history?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/performance/history?limit=-1").Code)
}

func TestHandleGetHistory_Error(t *testing.T) {
	h := NewHandler(&fakeHistory{err: errors.New("locked")}, &fakeRecorder{}, zerolog.Nop())

	w := serve(h, http.MethodGet, "/api/performance/history")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleRecordSnapshot(t *testing.T) {
	h := NewHandler(&fakeHistory{}, &fakeRecorder{}, zerolog.Nop())

	w := serve(h, http.MethodPost, "/api/performance/snapshot")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"total_value":1250`)
}

func TestHandleRecordSnapshot_NoData(t *testing.T) {
	h := NewHandler(&fakeHistory{}, &fakeRecorder{err: metrics.ErrNoData}, zerolog.Nop())

	w := serve(h, http.MethodPost, "/api/performance/snapshot")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no portfolio data"}`, w.Body.String())
}

func mustData(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return string(body["data"])
}
