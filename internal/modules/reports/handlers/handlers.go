// Package handlers serves the dashboard, the landing page and report downloads.
package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/reports"
)

//go:embed templates/*.html
var templates embed.FS

var (
	landingPage = template.Must(template.ParseFS(templates, "templates/landing.html"))
	errorPage   = template.Must(template.ParseFS(templates, "templates/error.html"))
)

// Handler serves report and page requests
type Handler struct {
	runner     analysis.Runner
	pdf        reports.Producer
	html       reports.Producer
	dashboard  reports.Producer
	chartFiles charts.Producer
	staticDir  string
	log        zerolog.Logger
}

// NewHandler creates a new reports handler. The dashboard producer renders the
// /dashboard page; chartFiles refreshes the images under staticDir on every
// dashboard view and may be nil.
func NewHandler(
	runner analysis.Runner,
	pdf reports.Producer,
	html reports.Producer,
	dashboard reports.Producer,
	chartFiles charts.Producer,
	staticDir string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		runner:     runner,
		pdf:        pdf,
		html:       html,
		dashboard:  dashboard,
		chartFiles: chartFiles,
		staticDir:  staticDir,
		log:        log.With().Str("handler", "reports").Logger(),
	}
}

// HandleLanding handles GET /
func (h *Handler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := landingPage.Execute(w, nil); err != nil {
		h.log.Error().Err(err).Msg("Failed to render landing page")
	}
}

// HandleDashboard handles GET /dashboard
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.writePageError(w, err)
		return
	}

	if h.chartFiles != nil {
		if _, err := h.chartFiles.Produce(r.Context(), result.Metrics, result.Alerts); err != nil {
			h.log.Warn().Err(err).Msg("Failed to refresh chart files")
		}
	}

	doc, err := h.dashboard.Produce(r.Context(), result.Metrics, result.Alerts)
	if err != nil {
		h.writePageError(w, err)
		return
	}
	h.writeDocument(w, doc, "")
}

// HandleDownloadPDF handles GET /api/reports/pdf
func (h *Handler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, h.pdf, "attachment")
}

// HandleViewPDF handles GET /api/reports/pdf/view
func (h *Handler) HandleViewPDF(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, h.pdf, "inline")
}

// HandleHTMLReport handles GET /api/reports/html
func (h *Handler) HandleHTMLReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, h.html, "inline")
}

// HandleStatic handles GET /static/{file}
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, name))
}

func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, producer reports.Producer, disposition string) {
	doc, err := h.produce(r.Context(), producer)
	if err != nil {
		switch {
		case errors.Is(err, metrics.ErrNoData):
			h.writeError(w, http.StatusNotFound, "no portfolio data")
		case errors.Is(err, metrics.ErrInvalidPrice):
			h.log.Error().Err(err).Msg("Invalid market data")
			h.writeError(w, http.StatusInternalServerError, "invalid market data")
		default:
			h.log.Error().Err(err).Msg("Failed to produce report")
			h.writeError(w, http.StatusInternalServerError, "failed to produce report")
		}
		return
	}
	h.writeDocument(w, doc, disposition)
}

func (h *Handler) produce(ctx context.Context, producer reports.Producer) (reports.Document, error) {
	result, err := h.runner.Run(ctx)
	if err != nil {
		return reports.Document{}, err
	}
	return producer.Produce(ctx, result.Metrics, result.Alerts)
}

func (h *Handler) writeDocument(w http.ResponseWriter, doc reports.Document, disposition string) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition+`; filename="`+doc.Filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.log.Debug().Err(err).Str("file", doc.Filename).Msg("Client went away during download")
	}
}

func (h *Handler) writePageError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	data := struct{ Title, Message string }{"Analysis Error", "Analysis failed. Check the server log for details."}
	if errors.Is(err, metrics.ErrNoData) {
		status = http.StatusNotFound
		data = struct{ Title, Message string }{"No Portfolio Data", "No holdings are recorded yet. Add holdings or load the sample portfolio."}
	} else {
		h.log.Error().Err(err).Msg("Dashboard failed")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorPage.Execute(w, data); err != nil {
		h.log.Error().Err(err).Msg("Failed to render error page")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// RegisterRoutes registers the report API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/pdf", h.HandleDownloadPDF)
		r.Get("/pdf/view", h.HandleViewPDF)
		r.Get("/html", h.HandleHTMLReport)
	})
}

// RegisterPages registers the browser-facing routes outside /api
func (h *Handler) RegisterPages(r chi.Router) {
	r.Get("/", h.HandleLanding)
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/static/{file}", h.HandleStatic)
}

// DashboardLinks is the navigation bar of the dashboard page
var DashboardLinks = []reports.Link{
	{Href: "/", Text: "Home"},
	{Href: "/api/reports/pdf", Text: "Download PDF"},
	{Href: "/api/reports/pdf/view", Text: "View PDF"},
	{Href: "/api/analysis", Text: "JSON"},
}
