package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePurger struct {
	cutoff time.Time
	rows   int64
	err    error
	calls  int
}

func (f *fakePurger) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func (f *fakePurger) DeleteStaleGuestCarts(_ context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func (f *fakePurger) DeleteOlderThan(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func (f *fakePurger) record(cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.rows, f.err
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func freeze(t *testing.T, job Job, now time.Time) {
	t.Helper()
	p, ok := job.(*purgeJob)
	require.True(t, ok, "unexpected job type %T", job)
	p.now = func() time.Time { return now }
}

func TestCleanupJobCutoffs(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	logg := testLogger()

	tokens := &fakePurger{rows: 3}
	job, err := NewVerificationCleanupJob(logg, tokens)
	require.NoError(t, err)
	freeze(t, job, now)
	require.NoError(t, job.Run(context.Background()))
	require.True(t, tokens.cutoff.Equal(now))

	carts := &fakePurger{}
	job, err = NewGuestCartCleanupJob(logg, carts, 0)
	require.NoError(t, err)
	freeze(t, job, now)
	require.NoError(t, job.Run(context.Background()))
	require.True(t, carts.cutoff.Equal(now.Add(-defaultGuestCartRetention)))

	notes := &fakePurger{}
	job, err = NewNotificationCleanupJob(logg, passthroughTx{}, notes, 48*time.Hour)
	require.NoError(t, err)
	freeze(t, job, now)
	require.NoError(t, job.Run(context.Background()))
	require.True(t, notes.cutoff.Equal(now.Add(-48*time.Hour)))
	require.Equal(t, "notification-cleanup", job.Name())
}

func TestCleanupJobPropagatesErrors(t *testing.T) {
	job, err := NewGuestCartCleanupJob(testLogger(), &fakePurger{err: errors.New("boom")}, time.Hour)
	require.NoError(t, err)
	require.ErrorContains(t, job.Run(context.Background()), "guest-cart-cleanup")

	_, err = NewVerificationCleanupJob(testLogger(), nil)
	require.Error(t, err)
}
