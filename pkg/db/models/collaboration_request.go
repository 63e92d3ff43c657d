package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"gorm.io/gorm"
)

// CollaborationRequest invites a shelter to co-host an event.
type CollaborationRequest struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Event       *Event                    `gorm:"foreignKey:EventID"`
	RequesterID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Requester   *User                     `gorm:"foreignKey:RequesterID"`
	InviteeID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Invitee     *User                     `gorm:"foreignKey:InviteeID"`
	Status      enums.CollaborationStatus `gorm:"type:text;not null"`
	Message     *string                   `gorm:"type:text"`
	RespondedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (c *CollaborationRequest) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
