package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"gorm.io/gorm"
)

// Adoption is one application by a user for a pet. A user may hold several
// applications for the same pet.
type Adoption struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"userId"`
	User         *User                `gorm:"foreignKey:UserID" json:"-"`
	PetID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"petId"`
	Pet          *Pet                 `gorm:"foreignKey:PetID" json:"-"`
	Status       enums.AdoptionStatus `gorm:"type:text;not null;index" json:"status"`
	Message      string               `gorm:"type:text" json:"message"`
	AppliedAt    time.Time            `gorm:"not null" json:"applicationDate"`
	AdminNotes   *string              `gorm:"type:text" json:"adminNotes,omitempty"`
	ShelterNotes *string              `gorm:"type:text" json:"shelterNotes,omitempty"`
	CreatedAt    time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a *Adoption) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
