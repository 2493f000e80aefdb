// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/config"
	"github.com/aristath/riskdesk/internal/scheduler"
)

// Fixed schedules (seconds field first)
const (
	PriceCachePruneSchedule   = "0 0 * * * *"  // hourly
	WALCheckpointSchedule     = "0 15 * * * *" // hourly, off the hour
	DatabaseIntegritySchedule = "0 0 4 * * *"  // daily at 04:00
	BackupSchedule            = "0 0 3 * * *"  // daily at 03:00
)

// RegisterJobs creates the scheduler and registers all jobs with it.
// The scheduler is stored in the container but not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if container.SnapshotRecorder == nil || container.PriceCache == nil {
		return nil, fmt.Errorf("services not initialized")
	}

	sched := scheduler.New(log)
	instances := &JobInstances{}

	// ==========================================
	// Job 1: Performance snapshot (+ report publishing)
	// ==========================================
	instances.PerformanceSnapshot = scheduler.NewPerformanceSnapshotJob(
		container.SnapshotRecorder,
		container.PDFReport,
		container.Publisher,
		cfg.AnalysisTimeout,
		log,
	)
	if err := sched.AddJob(cfg.SnapshotSchedule, instances.PerformanceSnapshot); err != nil {
		return nil, fmt.Errorf("failed to register performance_snapshot job: %w", err)
	}

	// ==========================================
	// Job 2: Price cache pruning
	// ==========================================
	instances.PriceCachePrune = scheduler.NewPriceCachePruneJob(container.PriceCache, scheduler.DefaultPriceCacheMaxAge, log)
	if err := sched.AddJob(PriceCachePruneSchedule, instances.PriceCachePrune); err != nil {
		return nil, fmt.Errorf("failed to register price_cache_prune job: %w", err)
	}

	// ==========================================
	// Jobs 3-4: Database maintenance
	// ==========================================
	databases := container.Databases()
	instances.CheckWALCheckpoints = scheduler.NewCheckWALCheckpointsJob(databases, log)
	if err := sched.AddJob(WALCheckpointSchedule, instances.CheckWALCheckpoints); err != nil {
		return nil, fmt.Errorf("failed to register check_wal_checkpoints job: %w", err)
	}
	instances.CheckDatabases = scheduler.NewCheckDatabasesJob(databases, log)
	if err := sched.AddJob(DatabaseIntegritySchedule, instances.CheckDatabases); err != nil {
		return nil, fmt.Errorf("failed to register check_databases job: %w", err)
	}

	// ==========================================
	// Job 5: Backup to object storage (only with a bucket)
	// ==========================================
	if container.Backup != nil {
		backup := scheduler.NewBackupDatabasesJob(container.Backup, log)
		if err := sched.AddJob(BackupSchedule, backup); err != nil {
			return nil, fmt.Errorf("failed to register backup_databases job: %w", err)
		}
		instances.BackupDatabases = backup
	}

	container.Scheduler = sched

	log.Info().Msg("Jobs registered")

	return instances, nil
}
