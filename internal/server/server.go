// Package server provides the HTTP server and routing for riskdesk.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/artifacts"
	"github.com/aristath/riskdesk/internal/config"
	"github.com/aristath/riskdesk/internal/di"
	portfoliohandlers "github.com/aristath/riskdesk/internal/modules/portfolio/handlers"
	reportshandlers "github.com/aristath/riskdesk/internal/modules/reports/handlers"
	riskhandlers "github.com/aristath/riskdesk/internal/modules/risk/handlers"
	snapshotshandlers "github.com/aristath/riskdesk/internal/modules/snapshots/handlers"
)

// minRequestTimeout is the floor of the per-request timeout
const minRequestTimeout = 60 * time.Second

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services; its Scheduler backs /api/jobs
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	httpMetrics    *httpMetrics
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Container.Databases(),
			cfg.Container.HoldingRepo,
			cfg.Container.SnapshotRepo,
			jobRunner(cfg.Container),
		),
		httpMetrics: newHTTPMetrics(cfg.Container.Registry),
	}

	timeout := requestTimeout(cfg.Config.AnalysisTimeout)
	s.setupMiddleware(cfg.Config.DevMode, timeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second, // reports wait for a full analysis
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// requestTimeout leaves room for a full price fetch plus rendering
func requestTimeout(analysisTimeout time.Duration) time.Duration {
	if t := analysisTimeout + 15*time.Second; t > minRequestTimeout {
		return t
	}
	return minRequestTimeout
}

func jobRunner(c *di.Container) JobRunner {
	if c.Scheduler == nil {
		return nil
	}
	return c.Scheduler
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool, timeout time.Duration) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Request metrics
	s.router.Use(s.httpMetrics.middleware)

	// Timeout
	s.router.Use(middleware.Timeout(timeout))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	c := s.container

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))

	reportsHandler := reportshandlers.NewHandler(
		c.AnalysisService,
		c.PDFReport,
		c.HTMLReport,
		c.Dashboard,
		c.ChartFiles,
		s.cfg.StaticDir,
		s.log,
	)

	// Landing page, dashboard and chart files
	reportsHandler.RegisterPages(s.router)

	s.router.Route("/api", func(r chi.Router) {
		portfoliohandlers.NewHandler(c.HoldingRepo, c.LimitRepo, c.Seeder, s.log).RegisterRoutes(r)
		riskhandlers.NewHandler(c.AnalysisService, s.log).RegisterRoutes(r)
		reportsHandler.RegisterRoutes(r)
		snapshotshandlers.NewHandler(c.SnapshotRepo, c.SnapshotRecorder, s.log).RegisterRoutes(r)
		artifacts.NewHandler(c.Publisher, s.log).RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
		})
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.systemHandlers.HandleListJobs)
			r.Post("/{name}", s.systemHandlers.HandleTriggerJob)
		})
	})
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
