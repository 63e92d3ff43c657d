package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

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

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: &bytes.Buffer{}})
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := &testJob{name: "success"}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	svc, err := NewService(ServiceParams{
		Logger:  testLogger(),
		Jobs:    []Job{ok, nil, bad},
		Lock:    lock,
		Metrics: metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)
	require.Len(t, svc.Jobs(), 2)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Equal(t, 1, ok.runs)
	require.Equal(t, 1, bad.runs)
	require.Equal(t, 1, lock.releases)

	count, err := testutil.GatherAndCount(reg, "pawfund_cron_job_failure_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "noop"}
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Jobs:   []Job{job},
		Lock:   &fakeLock{held: true},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Zero(t, job.runs)
}

func TestScheduleParsing(t *testing.T) {
	svc, err := NewService(ServiceParams{Logger: testLogger(), Lock: &fakeLock{}})
	require.NoError(t, err)
	from := time.Date(2025, 5, 14, 9, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 5, 14, 10, 0, 0, 0, time.UTC), svc.Next(from))

	svc, err = NewService(ServiceParams{Logger: testLogger(), Lock: &fakeLock{}, Schedule: "15 3 * * *"})
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 15, 3, 15, 0, 0, time.UTC), svc.Next(from))

	_, err = NewService(ServiceParams{Logger: testLogger(), Lock: &fakeLock{}, Schedule: "every hour"})
	require.Error(t, err)
}

type signalJob struct {
	ran chan struct{}
}

func (s signalJob) Name() string { return "signal" }

func (s signalJob) Run(context.Context) error {
	s.ran <- struct{}{}
	return nil
}

func TestRunStopsOnCancel(t *testing.T) {
	job := signalJob{ran: make(chan struct{}, 1)}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Jobs: []Job{job}, Lock: &fakeLock{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle did not run")
	}
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
