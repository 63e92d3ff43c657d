package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"gorm.io/gorm"
)

// Event is the canonical event record. Participants live in join tables.
type Event struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Title           string              `gorm:"type:text;not null"`
	Description     string              `gorm:"type:text"`
	Date            time.Time           `gorm:"not null"`
	Location        string              `gorm:"type:text"`
	Category        enums.EventCategory `gorm:"type:text;not null"`
	Status          enums.EventStatus   `gorm:"type:text;not null"`
	StartTime       string              `gorm:"type:text"`
	EndTime         string              `gorm:"type:text"`
	MaxParticipants int                 `gorm:"not null;default:0"`
	MainShelterID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	MainShelter     *User               `gorm:"foreignKey:MainShelterID"`
	Collaborators   []User              `gorm:"many2many:event_collaborators"`
	Volunteers      []User              `gorm:"many2many:event_volunteers"`
	Donors          []User              `gorm:"many2many:event_donors"`
	CreatedAt       time.Time           `gorm:"autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// HasCollaborator reports whether userID is already a collaborating shelter.
func (e *Event) HasCollaborator(userID uuid.UUID) bool {
	for _, c := range e.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}
