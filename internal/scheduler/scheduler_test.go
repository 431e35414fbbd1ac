package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgpulse/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "refresh", schedule: "0 30 22 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "refresh", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a cron"}))

	assert.Equal(t, []string{"refresh"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("refresh"))
	assert.Error(t, s.RemoveJob("refresh"))
	assert.Empty(t, s.GetAllJobs())
}

func TestRunNow_RetriesUntilSuccess(t *testing.T) {
	s := New(logger.Nop()).WithRetry(3, time.Millisecond)
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1.0, stats.SuccessRate)
	assert.True(t, stats.LastSuccess)
}

func TestRunNow_GivesUp(t *testing.T) {
	s := New(logger.Nop()).WithRetry(1, time.Millisecond)
	require.NoError(t, s.AddJob(&countingJob{name: "broken", schedule: "@daily", failures: 10}))

	result, err := s.RunNow(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	_, err = s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

// blockingJob runs until release is closed
type blockingJob struct {
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Name() string     { return "slow" }
func (j *blockingJob) Schedule() string { return "@daily" }

func (j *blockingJob) Run(ctx context.Context) error {
	close(j.started)
	select {
	case <-j.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestRunNow_NoOverlap(t *testing.T) {
	s := New(logger.Nop()).WithRetry(0, time.Millisecond)
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), "slow")
		done <- err
	}()

	select {
	case <-job.started:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not start")
	}

	result, err := s.RunNow(context.Background(), "slow")
	require.ErrorIs(t, err, ErrJobRunning)
	assert.True(t, result.Skipped)
	assert.False(t, result.Success)

	close(job.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}

	history, err := s.GetJobHistory("slow")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
}

func TestJobHistory_Bounded(t *testing.T) {
	var h JobHistory
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, maxHistory/2, h.FailureCount())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-12)

	var empty JobHistory
	_, ok := empty.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, empty.SuccessRate())
}
