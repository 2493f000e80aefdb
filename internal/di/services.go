// Package di provides dependency injection for services.
package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/artifacts"
	"github.com/aristath/riskdesk/internal/clients/yahoo"
	"github.com/aristath/riskdesk/internal/config"
	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/compliance"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/portfolio"
	"github.com/aristath/riskdesk/internal/modules/pricecache"
	"github.com/aristath/riskdesk/internal/modules/reports"
	reportshandlers "github.com/aristath/riskdesk/internal/modules/reports/handlers"
	"github.com/aristath/riskdesk/internal/modules/sectors"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
	"github.com/aristath/riskdesk/internal/reliability"
)

// StaticURLPrefix is where the server mounts StaticDir
const StaticURLPrefix = "/static/"

// InitializeServices creates all services and stores them in the container
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.HoldingRepo == nil || container.LimitRepo == nil || container.SnapshotRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}

	// ==========================================
	// Market data
	// ==========================================
	container.YahooClient = yahoo.NewClient(log)
	container.PriceCache = pricecache.New(container.CacheDB.Conn(), container.YahooClient, cfg.PriceCacheTTL, log)

	// ==========================================
	// Metrics registry
	// ==========================================
	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ==========================================
	// Analysis
	// ==========================================
	container.Sectors = sectors.DefaultTable()
	container.MetricsEngine = metrics.NewEngine(metrics.Options{
		RiskFreeRate:       cfg.RiskFreeRate,
		TradingDaysPerYear: cfg.TradingDaysPerYear,
	}, container.Sectors, log)
	container.Checker = compliance.NewChecker(log)

	container.AnalysisService = analysis.NewService(
		container.HoldingRepo,
		container.LimitRepo,
		container.PriceCache,
		container.MetricsEngine,
		container.Checker,
		analysis.NewPrometheusRecorder(container.Registry),
		analysis.Config{
			Period:       cfg.PricePeriod,
			FetchTimeout: cfg.AnalysisTimeout,
		},
		log,
	)

	container.Seeder = portfolio.NewSeeder(container.HoldingRepo, container.LimitRepo, log)
	container.SnapshotRecorder = snapshots.NewRecorder(container.AnalysisService, container.SnapshotRepo, log)

	// ==========================================
	// Charts and reports
	// ==========================================
	container.ChartFiles = charts.NewFileProducer(cfg.StaticDir, StaticURLPrefix, log)
	container.ChartEmbedded = charts.NewEmbeddedProducer(log)
	container.PDFReport = reports.NewPDFProducer(container.ChartEmbedded, log)
	container.HTMLReport = reports.NewHTMLProducer(container.ChartEmbedded, log)
	container.Dashboard = reports.NewHTMLProducer(container.ChartFiles, log).
		WithLinks(reportshandlers.DashboardLinks...)

	// ==========================================
	// Artifact publishing
	// ==========================================
	store, err := newArtifactStore(cfg.Artifacts, log)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact store: %w", err)
	}
	if store == nil {
		container.Publisher = artifacts.NopPublisher{}
	} else {
		container.ArtifactStore = store
		container.Publisher = artifacts.NewStorePublisher(store, cfg.Artifacts.Prefix, log)
		// The cache database is rebuilt from the provider, so only portfolio.db is backed up
		container.Backup = reliability.NewBackupService(
			map[string]*database.DB{container.PortfolioDB.Name(): container.PortfolioDB},
			store,
			cfg.Artifacts.Prefix,
			filepath.Join(cfg.DataDir, "backup-staging"),
			log,
		)
	}

	log.Info().Msg("Services initialized")

	return nil
}

// newArtifactStore returns nil unless a bucket is configured
func newArtifactStore(cfg *config.ArtifactConfig, log zerolog.Logger) (artifacts.ObjectStore, error) {
	if !cfg.Enabled() {
		log.Info().Msg("Artifact publishing disabled (ARTIFACT_S3_BUCKET not set)")
		return nil, nil
	}

	store, err := artifacts.NewS3Store(context.Background(), artifacts.S3Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	}, log)
	if err != nil {
		return nil, err
	}
	return store, nil
}
