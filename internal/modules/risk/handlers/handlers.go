// Package handlers provides HTTP handlers for portfolio risk analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/metrics"
)

// Handler handles risk analysis HTTP requests
type Handler struct {
	runner analysis.Runner
	log    zerolog.Logger
}

// NewHandler creates a new risk analysis handler
func NewHandler(runner analysis.Runner, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		log:    log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetAnalysis handles GET /api/analysis
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	h.writeData(w, http.StatusOK, result)
}

// HandleGetAlerts handles GET /api/risk/alerts
func (h *Handler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"run_id": result.RunID,
		"alerts": result.Alerts,
	})
}

// HandleGetSummary handles GET /api/risk/summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	m := result.Metrics
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"total_value":      m.TotalValue,
		"total_cost_basis": m.TotalCostBasis,
		"total_pnl":        m.TotalPnL,
		"total_pnl_pct":    m.TotalPnLPct,
		"volatility":       m.Volatility,
		"var_95":           m.VaR95,
		"max_drawdown":     m.MaxDrawdown,
		"sharpe_ratio":     m.SharpeRatio,
		"holdings_count":   len(m.Positions),
		"observations":     m.Observations,
	})
}

// HandleGetCorrelation handles GET /api/risk/correlation
func (h *Handler) HandleGetCorrelation(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	h.writeData(w, http.StatusOK, result.Metrics.Correlation)
}

// HandleGetCorrelationPair handles GET /api/risk/correlation/{a}/{b}
func (h *Handler) HandleGetCorrelationPair(w http.ResponseWriter, r *http.Request) {
	a := strings.ToUpper(chi.URLParam(r, "a"))
	b := strings.ToUpper(chi.URLParam(r, "b"))

	result, ok := h.run(w, r)
	if !ok {
		return
	}
	corr, found := result.Metrics.Correlation.At(a, b)
	if !found {
		h.writeError(w, http.StatusNotFound, "no correlation for "+a+"/"+b)
		return
	}
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"a":           a,
		"b":           b,
		"correlation": corr,
	})
}

// HandleGetSectors handles GET /api/risk/sectors
func (h *Handler) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	h.writeData(w, http.StatusOK, result.Metrics.SectorWeights)
}

// HandleGetPerformanceChart handles GET /api/charts/performance
func (h *Handler) HandleGetPerformanceChart(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	h.writeData(w, http.StatusOK, charts.PerformanceData(result.Metrics))
}

// run executes an analysis and writes the error response when it fails.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) (*analysis.Result, bool) {
	result, err := h.runner.Run(r.Context())
	switch {
	case err == nil:
		return result, true
	case errors.Is(err, metrics.ErrNoData):
		h.writeError(w, http.StatusNotFound, "no portfolio data")
	case errors.Is(err, metrics.ErrInvalidPrice):
		h.log.Error().Err(err).Msg("Invalid market data")
		h.writeError(w, http.StatusInternalServerError, "invalid market data")
	default:
		h.log.Error().Err(err).Msg("Analysis failed")
		h.writeError(w, http.StatusInternalServerError, "analysis failed")
	}
	return nil, false
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
