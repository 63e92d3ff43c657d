package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/pawfund/pawfund-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultGuestCartRetention    = 30 * 24 * time.Hour
	defaultNotificationRetention = 30 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type verificationStore interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type guestCartStore interface {
	DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationStore interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// purgeJob deletes rows older than a cutoff computed from now.
type purgeJob struct {
	name      string
	logg      *logger.Logger
	retention time.Duration
	purge     func(ctx context.Context, cutoff time.Time) (int64, error)
	now       func() time.Time
}

func (j *purgeJob) Name() string { return j.name }

func (j *purgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.purge(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "cron.purge_complete")
	return nil
}

// NewVerificationCleanupJob removes verification tokens past their expiry.
func NewVerificationCleanupJob(logg *logger.Logger, store verificationStore) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	return &purgeJob{
		name:  "verification-token-cleanup",
		logg:  logg,
		purge: store.DeleteExpired,
		now:   time.Now,
	}, nil
}

// NewGuestCartCleanupJob drops guest carts untouched for the retention window.
func NewGuestCartCleanupJob(logg *logger.Logger, store guestCartStore, retention time.Duration) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if retention <= 0 {
		retention = defaultGuestCartRetention
	}
	return &purgeJob{
		name:      "guest-cart-cleanup",
		logg:      logg,
		retention: retention,
		purge:     store.DeleteStaleGuestCarts,
		now:       time.Now,
	}, nil
}

// NewNotificationCleanupJob drops in-app notifications past retention.
func NewNotificationCleanupJob(logg *logger.Logger, db txRunner, store notificationStore, retention time.Duration) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if store == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if retention <= 0 {
		retention = defaultNotificationRetention
	}
	return &purgeJob{
		name:      "notification-cleanup",
		logg:      logg,
		retention: retention,
		purge: func(ctx context.Context, cutoff time.Time) (int64, error) {
			var deleted int64
			err := db.WithTx(ctx, func(tx *gorm.DB) error {
				rows, err := store.DeleteOlderThan(ctx, tx, cutoff)
				deleted = rows
				return err
			})
			return deleted, err
		},
		now: time.Now,
	}, nil
}
