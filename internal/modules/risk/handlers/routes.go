package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/analysis", h.HandleGetAnalysis) // Full run: metrics, alerts, missing prices

	r.Route("/risk", func(r chi.Router) {
		r.Get("/summary", h.HandleGetSummary)
		r.Get("/alerts", h.HandleGetAlerts)
		r.Get("/correlation", h.HandleGetCorrelation)
		r.Get("/correlation/{a}/{b}", h.HandleGetCorrelationPair)
		r.Get("/sectors", h.HandleGetSectors)
	})

	r.Get("/charts/performance", h.HandleGetPerformanceChart)
}
