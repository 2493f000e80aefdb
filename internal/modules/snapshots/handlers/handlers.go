// Package handlers provides HTTP handlers for the performance history.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
)

// HistoryReader reads recorded snapshots
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]snapshots.Snapshot, error)
}

// SnapshotRecorder records a snapshot on demand
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context) (snapshots.Snapshot, *analysis.Result, error)
}

// maxHistory caps the limit query parameter
const maxHistory = 3650

// Handler handles performance history HTTP requests
type Handler struct {
	history  HistoryReader
	recorder SnapshotRecorder
	log      zerolog.Logger
}

// NewHandler creates a new performance history handler
func NewHandler(history HistoryReader, recorder SnapshotRecorder, log zerolog.Logger) *Handler {
	return &Handler{
		history:  history,
		recorder: recorder,
		log:      log.With().Str("handler", "performance").Logger(),
	}
}

// HandleGetHistory handles GET /api/performance/history?limit=N
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	if limit == 0 || limit > maxHistory {
		limit = maxHistory
	}

	history, err := h.history.History(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load performance history")
		h.writeError(w, http.StatusInternalServerError, "Failed to load performance history")
		return
	}
	h.writeData(w, http.StatusOK, history)
}

// HandleRecordSnapshot handles POST /api/performance/snapshot
func (h *Handler) HandleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, _, err := h.recorder.RecordSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, metrics.ErrNoData) {
			h.writeError(w, http.StatusNotFound, "no portfolio data")
			return
		}
		h.log.Error().Err(err).Msg("Failed to record snapshot")
		h.writeError(w, http.StatusInternalServerError, "Failed to record snapshot")
		return
	}
	h.writeData(w, http.StatusCreated, snapshot)
}

// RegisterRoutes registers the performance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Get("/history", h.HandleGetHistory)
		r.Post("/snapshot", h.HandleRecordSnapshot)
	})
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
