// Package handlers provides HTTP handlers for holdings and risk limits.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/portfolio"
)

// Seeder loads the sample portfolio
type Seeder interface {
	Seed(ctx context.Context) error
}

// Handler handles portfolio HTTP requests
type Handler struct {
	holdings domain.HoldingsStore
	limits   domain.RiskLimitsStore
	seeder   Seeder
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(
	holdings domain.HoldingsStore,
	limits domain.RiskLimitsStore,
	seeder Seeder,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		holdings: holdings,
		limits:   limits,
		seeder:   seeder,
		validate: validator.New(),
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// holdingPayload is the wire form of a holding; dates travel as YYYY-MM-DD.
type holdingPayload struct {
	ID            int64   `json:"id,omitempty"`
	Symbol        string  `json:"symbol" validate:"required,max=32"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	PurchaseDate  string  `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	AssetClass    string  `json:"asset_class" validate:"max=64"`
}

func toPayload(h domain.Holding) holdingPayload {
	return holdingPayload{
		ID:            h.ID,
		Symbol:        h.Symbol,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice,
		PurchaseDate:  h.PurchaseDate.Format(domain.DateLayout),
		AssetClass:    h.AssetClass,
	}
}

// HandleListHoldings handles GET /api/portfolio/holdings
func (h *Handler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdings.ListHoldings(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list holdings")
		h.writeError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}

	out := make([]holdingPayload, 0, len(holdings))
	for _, holding := range holdings {
		out = append(out, toPayload(holding))
	}
	h.writeData(w, http.StatusOK, out)
}

// HandleAddHolding handles POST /api/portfolio/holdings
func (h *Handler) HandleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req holdingPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	date, err := time.Parse(domain.DateLayout, req.PurchaseDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "purchase_date must be YYYY-MM-DD")
		return
	}

	holding := domain.Holding{
		Symbol:        portfolio.NormalizeSymbol(req.Symbol),
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  date,
		AssetClass:    req.AssetClass,
	}
	if err := h.holdings.AddHolding(r.Context(), holding); err != nil {
		if errors.Is(err, portfolio.ErrInvalidHolding) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("symbol", holding.Symbol).Msg("Failed to add holding")
		h.writeError(w, http.StatusInternalServerError, "Failed to add holding")
		return
	}

	h.log.Info().Str("symbol", holding.Symbol).Float64("quantity", holding.Quantity).Msg("Holding added")
	h.writeData(w, http.StatusCreated, toPayload(holding))
}

// HandleGetLimits handles GET /api/portfolio/limits
func (h *Handler) HandleGetLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.limits.GetLimits(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get risk limits")
		h.writeError(w, http.StatusInternalServerError, "Failed to get risk limits")
		return
	}
	h.writeData(w, http.StatusOK, limits)
}

// HandleSetLimits handles PUT /api/portfolio/limits. The body replaces the
// whole limit set.
func (h *Handler) HandleSetLimits(w http.ResponseWriter, r *http.Request) {
	var limits []domain.RiskLimit
	if err := json.NewDecoder(r.Body).Decode(&limits); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.limits.SetLimits(r.Context(), limits); err != nil {
		if errors.Is(err, portfolio.ErrInvalidLimit) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to set risk limits")
		h.writeError(w, http.StatusInternalServerError, "Failed to set risk limits")
		return
	}
	h.writeData(w, http.StatusOK, limits)
}

// HandleSeed handles POST /api/portfolio/seed
func (h *Handler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	if err := h.seeder.Seed(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to seed sample portfolio")
		h.writeError(w, http.StatusInternalServerError, "Failed to seed sample portfolio")
		return
	}
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"holdings": len(portfolio.SampleHoldings()),
		"message":  "Sample portfolio loaded",
	})
}

// validationMessage names the first failing field
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("invalid %s (%s)", verrs[0].Field(), verrs[0].Tag())
	}
	return err.Error()
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
