package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string {
	if j.name == "" {
		return "counting"
	}
	return j.name
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &countingJob{})

	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_AddJob_RequiresSecondsField(t *testing.T) {
	s := New(zerolog.Nop())

	assert.NoError(t, s.AddJob("0 30 22 * * MON-FRI", &countingJob{name: "with_seconds"}))
	assert.Error(t, s.AddJob("30 22 * * MON-FRI", &countingJob{name: "without_seconds"}))
}

func TestScheduler_AddJob_DuplicateName(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 0 * * * *", &countingJob{}))
	err := s.AddJob("0 15 * * * *", &countingJob{})

	assert.ErrorContains(t, err, "already registered")
	assert.Len(t, s.Jobs(), 1)
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}
	require.NoError(t, s.AddJob("0 0 4 * * *", job))

	err := s.RunNow("counting")

	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), job.runs.Load())

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].LastRun)
	assert.Equal(t, "boom", jobs[0].LastErr)
}

func TestScheduler_RunNow_UnknownJob(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.RunNow("rebalance")

	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestScheduler_Jobs(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("0 0 4 * * *", &countingJob{name: "b_job"}))
	require.NoError(t, s.AddJob("0 0 * * * *", &countingJob{name: "a_job"}))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a_job", jobs[0].Name)
	assert.Equal(t, "0 0 * * * *", jobs[0].Schedule)
	assert.Nil(t, jobs[0].NextRun, "not started")
	assert.Nil(t, jobs[0].LastRun)
	assert.Equal(t, "b_job", jobs[1].Name)

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool {
		jobs := s.Jobs()
		return jobs[0].NextRun != nil && jobs[1].NextRun != nil
	}, time.Second, 10*time.Millisecond)
}
