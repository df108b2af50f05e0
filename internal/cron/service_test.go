package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
)

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

type recordedRun struct {
	job    string
	failed bool
}

type fakeRecorder struct {
	runs []recordedRun
}

func (f *fakeRecorder) ObserveJob(job string, elapsed time.Duration, err error) {
	f.runs = append(f.runs, recordedRun{job: job, failed: err != nil})
}

type busyLock struct{}

func (busyLock) Acquire(context.Context) (bool, error) { return false, nil }
func (busyLock) Release(context.Context) error         { return nil }

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	recorder := &fakeRecorder{}
	lock := &LocalLock{}

	service, err := NewService(ServiceParams{
		Logger:  logger.Nop(),
		Jobs:    []Job{ok, nil, failing},
		Lock:    lock,
		Metrics: recorder,
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, []recordedRun{{job: "ok"}, {job: "fail", failed: true}}, recorder.runs)
	assert.False(t, lock.held)
}

func TestRunOnceSkipsWhenLockBusy(t *testing.T) {
	job := &testJob{name: "ok"}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Jobs: []Job{job}, Lock: busyLock{}})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "ok"}
	service, err := NewService(ServiceParams{Logger: logger.Nop(), Jobs: []Job{job}, Lock: &LocalLock{}, Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, service.Run(ctx), context.Canceled)
	assert.Equal(t, 1, job.runs)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &LocalLock{}, Jobs: []Job{&testJob{}}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), Jobs: []Job{&testJob{}}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), Lock: &LocalLock{}})
	assert.Error(t, err)
}
