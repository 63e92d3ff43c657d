package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindGuestCart(ctx context.Context, token string) (*models.GuestCart, error)
	SaveGuestCart(ctx context.Context, cart *models.GuestCart) error
	DeleteGuestCart(ctx context.Context, id uuid.UUID) error
	FindUserCart(ctx context.Context, userID uuid.UUID) (*models.UserCart, error)
	SaveUserCart(ctx context.Context, cart *models.UserCart) error
	DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type petCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Pet, error)
}
