/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived instance of the service. It is built
 * by Wire() and handed to the HTTP server and the CLI.
 */
package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aristath/riskdesk/internal/artifacts"
	"github.com/aristath/riskdesk/internal/clients/yahoo"
	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/modules/analysis"
	"github.com/aristath/riskdesk/internal/modules/charts"
	"github.com/aristath/riskdesk/internal/modules/compliance"
	"github.com/aristath/riskdesk/internal/modules/metrics"
	"github.com/aristath/riskdesk/internal/modules/portfolio"
	"github.com/aristath/riskdesk/internal/modules/pricecache"
	"github.com/aristath/riskdesk/internal/modules/reports"
	"github.com/aristath/riskdesk/internal/modules/sectors"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
	"github.com/aristath/riskdesk/internal/reliability"
	"github.com/aristath/riskdesk/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Databases
	PortfolioDB *database.DB // holdings, risk_limits, performance_history
	CacheDB     *database.DB // price_cache

	// Repositories
	HoldingRepo  *portfolio.HoldingRepository
	LimitRepo    *portfolio.LimitRepository
	SnapshotRepo *snapshots.Repository

	// Clients
	YahooClient *yahoo.Client
	PriceCache  *pricecache.Cache // wraps YahooClient

	// Services
	Registry         *prometheus.Registry
	Sectors          *sectors.Table
	MetricsEngine    *metrics.Engine
	Checker          *compliance.Checker
	AnalysisService  *analysis.Service
	Seeder           *portfolio.Seeder
	SnapshotRecorder *snapshots.Recorder

	// Presentation
	ChartFiles    *charts.FileProducer     // PNGs under StaticDir, for the dashboard
	ChartEmbedded *charts.EmbeddedProducer // data: URLs, for reports
	PDFReport     *reports.PDFProducer
	HTMLReport    *reports.HTMLProducer
	Dashboard     *reports.HTMLProducer

	// Artifact storage
	ArtifactStore artifacts.ObjectStore      // nil when publishing is disabled
	Publisher     artifacts.Publisher        // NopPublisher when disabled
	Backup        *reliability.BackupService // nil when publishing is disabled
	Scheduler     *scheduler.Scheduler
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.PortfolioDB != nil {
		dbs[c.PortfolioDB.Name()] = c.PortfolioDB
	}
	if c.CacheDB != nil {
		dbs[c.CacheDB.Name()] = c.CacheDB
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() {
	if c.PortfolioDB != nil {
		c.PortfolioDB.Close()
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
}

// JobInstances holds the scheduled jobs for manual triggering
type JobInstances struct {
	PerformanceSnapshot scheduler.Job
	PriceCachePrune     scheduler.Job
	CheckWALCheckpoints scheduler.Job
	CheckDatabases      scheduler.Job
	BackupDatabases     scheduler.Job // nil without an artifact store
}
