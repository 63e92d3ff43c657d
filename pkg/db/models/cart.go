package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/pawfund/pawfund-backend/pkg/db/types"
	"gorm.io/gorm"
)

// GuestCart is an anonymous interest list addressed by an opaque token.
type GuestCart struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Token     string            `gorm:"type:text;not null;uniqueIndex"`
	PetIDs    dbtypes.UUIDArray `gorm:"column:pet_ids;not null"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (g *GuestCart) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	if g.PetIDs == nil {
		g.PetIDs = dbtypes.UUIDArray{}
	}
	return nil
}

// UserCart is the interest list of an authenticated user. One per user.
type UserCart struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	PetIDs    dbtypes.UUIDArray `gorm:"column:pet_ids;not null"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (u *UserCart) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	if u.PetIDs == nil {
		u.PetIDs = dbtypes.UUIDArray{}
	}
	return nil
}
