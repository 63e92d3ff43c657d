package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScreeningResult is an append-only record of one readiness quiz attempt.
type ScreeningResult struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_screening_user_created,priority:1" json:"userId"`
	Score     int       `gorm:"not null" json:"score"`
	CreatedAt time.Time `gorm:"not null;index:idx_screening_user_created,priority:2" json:"createdAt"`
}

func (s *ScreeningResult) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}
