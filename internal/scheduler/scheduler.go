// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrUnknownJob is returned by RunNow for names that were never registered
var ErrUnknownJob = errors.New("unknown job")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobInfo describes a registered job
type JobInfo struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"next_run,omitempty"` // set once the scheduler is started
	LastRun  *time.Time `json:"last_run,omitempty"`
	LastErr  string     `json:"last_error,omitempty"`
}

type entry struct {
	id       cron.EntryID
	schedule string
	job      Job
	lastRun  time.Time
	lastErr  error
	running  sync.Mutex // a job never overlaps with itself
}

// Scheduler keeps jobs by name so they can also be triggered by hand
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a new scheduler. Schedules carry a leading seconds field.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		log:     log.With().Str("component", "scheduler").Logger(),
		entries: make(map[string]*entry),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under its name. Schedule examples:
//   - "0 30 22 * * MON-FRI" - 22:30 on weekdays
//   - "0 0 * * * *"         - Every hour
//   - "@every 15m"          - Every 15 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	name := job.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	e := &entry{schedule: schedule, job: job}
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(e, "cron")
	})
	if err != nil {
		return err
	}
	e.id = id
	s.entries[name] = e

	s.log.Info().
		Str("schedule", schedule).
		Str("job", name).
		Msg("Job registered")

	return nil
}

// RunNow runs the named job immediately, outside its schedule. It waits for
// a scheduled run of the same job that is already in progress.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(e, "manual")
}

// Jobs lists the registered jobs sorted by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.entries))
	for name, e := range s.entries {
		info := JobInfo{Name: name, Schedule: e.schedule}
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			info.NextRun = &next
		}
		if !e.lastRun.IsZero() {
			last := e.lastRun
			info.LastRun = &last
			if e.lastErr != nil {
				info.LastErr = e.lastErr.Error()
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(e *entry, trigger string) error {
	e.running.Lock()
	defer e.running.Unlock()

	name := e.job.Name()
	log := s.log.With().Str("job", name).Str("trigger", trigger).Logger()
	log.Debug().Msg("Running job")

	start := time.Now()
	err := e.job.Run()

	s.mu.Lock()
	e.lastRun = start
	e.lastErr = err
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
		return err
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Job completed")
	return nil
}
