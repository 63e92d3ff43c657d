package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists guest and user carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindGuestCart returns gorm.ErrRecordNotFound when the token is unknown.
func (r *Repository) FindGuestCart(ctx context.Context, token string) (*models.GuestCart, error) {
	var cart models.GuestCart
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) SaveGuestCart(ctx context.Context, cart *models.GuestCart) error {
	return r.db.WithContext(ctx).Save(cart).Error
}

func (r *Repository) DeleteGuestCart(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.GuestCart{}, "id = ?", id).Error
}

// FindUserCart returns gorm.ErrRecordNotFound when the user has no cart yet.
func (r *Repository) FindUserCart(ctx context.Context, userID uuid.UUID) (*models.UserCart, error) {
	var cart models.UserCart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) SaveUserCart(ctx context.Context, cart *models.UserCart) error {
	return r.db.WithContext(ctx).Save(cart).Error
}

// DeleteStaleGuestCarts removes guest carts untouched since cutoff.
func (r *Repository) DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&models.GuestCart{})
	return res.RowsAffected, res.Error
}
