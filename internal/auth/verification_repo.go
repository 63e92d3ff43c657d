package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"gorm.io/gorm"
)

// VerificationRepository persists email verification tokens.
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *VerificationRepository) FindByToken(ctx context.Context, token string) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&vt).Error; err != nil {
		return nil, err
	}
	return &vt, nil
}

func (r *VerificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VerificationToken{}, "id = ?", id).Error
}

// DeleteForUser drops every outstanding token of the user.
func (r *VerificationRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VerificationToken{}, "user_id = ?", userID).Error
}

// DeleteExpired removes tokens that expired before cutoff and reports how many were removed.
func (r *VerificationRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.VerificationToken{})
	return res.RowsAffected, res.Error
}
