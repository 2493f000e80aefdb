package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/holdings", h.HandleListHoldings)
		r.Post("/holdings", h.HandleAddHolding)
		r.Get("/limits", h.HandleGetLimits)
		r.Put("/limits", h.HandleSetLimits)
		r.Post("/seed", h.HandleSeed) // Replace everything with the sample portfolio
	})
}
