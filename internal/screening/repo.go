package screening

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists screening results. Rows are never updated.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, result *models.ScreeningResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// Latest returns the most recent result for the user, or nil when none exist.
func (r *Repository) Latest(ctx context.Context, userID uuid.UUID) (*models.ScreeningResult, error) {
	var result models.ScreeningResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByUser returns every result of the user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ScreeningResult, error) {
	var list []models.ScreeningResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
