package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/snapshots"
	"github.com/aristath/riskdesk/internal/scheduler"
)

// LatestSnapshotReader reads the most recent performance snapshot
type LatestSnapshotReader interface {
	Latest(ctx context.Context) (snapshots.Snapshot, bool, error)
}

// HoldingCounter counts stored holdings
type HoldingCounter interface {
	Count(ctx context.Context) (int, error)
}

// JobRunner lists scheduled jobs and runs them on demand
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	RunNow(name string) error
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	databases   map[string]*database.DB
	holdings    HoldingCounter
	snapshots   LatestSnapshotReader
	jobs        JobRunner // nil disables the job endpoints
	systemStats func() (cpuPercent, memPercent float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	databases map[string]*database.DB,
	holdings HoldingCounter,
	snapshotReader LatestSnapshotReader,
	jobs JobRunner,
) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		databases:   databases,
		holdings:    holdings,
		snapshots:   snapshotReader,
		jobs:        jobs,
	}
	h.systemStats = h.getSystemStats
	return h
}

// DatabaseStatus is one database in the status response
type DatabaseStatus struct {
	Name          string `json:"name"`
	SizeBytes     int64  `json:"size_bytes"`
	WALSizeBytes  int64  `json:"wal_size_bytes"`
	PageCount     int64  `json:"page_count"`
	PageSize      int64  `json:"page_size"`
	FreelistCount int64  `json:"freelist_count"`
	Error         string `json:"error,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string           `json:"status"`
	StartedAt     string           `json:"started_at"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	Holdings      int              `json:"holdings"`
	LastSnapshot  string           `json:"last_snapshot,omitempty"` // YYYY-MM-DD
	Databases     []DatabaseStatus `json:"databases"`
	LastChecked   string           `json:"last_checked"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := "healthy"

	holdings, err := h.holdings.Count(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count holdings")
		status = "degraded"
	}

	var lastSnapshot string
	if h.snapshots != nil {
		latest, found, err := h.snapshots.Latest(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to read latest snapshot")
			status = "degraded"
		} else if found {
			lastSnapshot = latest.Date.Format(domain.DateLayout)
		}
	}

	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	dbs := make([]DatabaseStatus, 0, len(names))
	for _, name := range names {
		entry := DatabaseStatus{Name: name}
		stats, err := h.databases[name].GetStats()
		if err != nil {
			h.log.Error().Err(err).Str("database", name).Msg("Failed to get database stats")
			entry.Error = err.Error()
			status = "degraded"
		} else {
			entry.SizeBytes = stats.SizeBytes
			entry.WALSizeBytes = stats.WALSizeBytes
			entry.PageCount = stats.PageCount
			entry.PageSize = stats.PageSize
			entry.FreelistCount = stats.FreelistCount
		}
		dbs = append(dbs, entry)
	}

	cpuPercent, memPercent := h.systemStats()

	h.writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:        status,
		StartedAt:     h.startupTime.Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Holdings:      holdings,
		LastSnapshot:  lastSnapshot,
		Databases:     dbs,
		LastChecked:   time.Now().Format(time.RFC3339),
	})
}

// HandleListJobs handles GET /api/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.jobs != nil {
		jobs = h.jobs.Jobs()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// HandleTriggerJob runs a scheduled job immediately.
// POST /api/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger")
	start := time.Now()
	err := h.jobs.RunNow(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
	case err != nil:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"job":    name,
			"error":  err.Error(),
		})
	default:
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "success",
			"job":         name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

// getSystemStats calculates CPU and RAM usage percentages.
// The CPU sample blocks for 100ms.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
