package artifacts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler lists published artifacts
type Handler struct {
	publisher Publisher
	log       zerolog.Logger
}

// NewHandler creates a new artifacts handler
func NewHandler(publisher Publisher, log zerolog.Logger) *Handler {
	return &Handler{
		publisher: publisher,
		log:       log.With().Str("handler", "artifacts").Logger(),
	}
}

// HandleList handles GET /api/artifacts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.publisher.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list artifacts")
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Failed to list artifacts"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"enabled":   h.publisher.Enabled(),
			"artifacts": artifacts,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// RegisterRoutes registers the artifact routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/artifacts", h.HandleList)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
