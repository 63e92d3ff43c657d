package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"gorm.io/gorm"
)

// Pet is a catalog entry that adopters can apply for.
type Pet struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string           `gorm:"type:text;not null" json:"name"`
	Age         int              `gorm:"not null;default:0" json:"age"`
	Breed       string           `gorm:"type:text" json:"breed"`
	Description string           `gorm:"type:text" json:"description"`
	ImageURLs   string           `gorm:"column:image_urls;type:text" json:"-"`
	Location    string           `gorm:"type:text" json:"location"`
	Status      enums.PetStatus  `gorm:"type:text;not null;default:'AVAILABLE';index" json:"status"`
	Gender      *enums.PetGender `gorm:"type:text" json:"gender,omitempty"`
	Vaccinated  bool             `gorm:"not null;default:false" json:"vaccinated"`
	Dewormed    bool             `gorm:"not null;default:false" json:"dewormed"`
	ShelterID   *uuid.UUID       `gorm:"type:uuid;index" json:"shelterId,omitempty"`
	Shelter     *User            `gorm:"foreignKey:ShelterID" json:"-"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Pet) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Images splits the stored comma-joined URL list.
func (p *Pet) Images() []string {
	if strings.TrimSpace(p.ImageURLs) == "" {
		return []string{}
	}
	parts := strings.Split(p.ImageURLs, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SetImages stores urls comma-joined.
func (p *Pet) SetImages(urls []string) {
	p.ImageURLs = strings.Join(urls, ",")
}
