package pets

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
)

// Filter narrows the catalog listing. Zero values are ignored.
type Filter struct {
	Status   string
	Breed    string
	Search   string
	Location string
	Age      *int
	AgeMin   *int
	AgeMax   *int
}

// ShelterDTO is the public face of the owning shelter.
type ShelterDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Phone    *string   `json:"phone,omitempty"`
	Address  *string   `json:"address,omitempty"`
}

// PetDTO is the catalog representation of a pet.
type PetDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Age         int              `json:"age"`
	Breed       string           `json:"breed"`
	Description string           `json:"description"`
	ImageURLs   []string         `json:"imageUrls"`
	Location    string           `json:"location"`
	Status      enums.PetStatus  `json:"status"`
	Gender      *enums.PetGender `json:"gender,omitempty"`
	Vaccinated  bool             `json:"vaccinated"`
	Dewormed    bool             `json:"dewormed"`
	Shelter     *ShelterDTO      `json:"shelter,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// PetInput carries create and update fields. On update, nil pointers keep
// the stored value.
type PetInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Age         *int       `json:"age" validate:"omitempty,min=0,max=50"`
	Breed       *string    `json:"breed"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Status      *string    `json:"status"`
	Gender      *string    `json:"gender"`
	Vaccinated  *bool      `json:"vaccinated"`
	Dewormed    *bool      `json:"dewormed"`
	ShelterID   *uuid.UUID `json:"shelterId"`
}

func FromModel(p *models.Pet) *PetDTO {
	if p == nil {
		return nil
	}
	dto := &PetDTO{
		ID:          p.ID,
		Name:        p.Name,
		Age:         p.Age,
		Breed:       p.Breed,
		Description: p.Description,
		ImageURLs:   p.Images(),
		Location:    p.Location,
		Status:      p.Status,
		Gender:      p.Gender,
		Vaccinated:  p.Vaccinated,
		Dewormed:    p.Dewormed,
		CreatedAt:   p.CreatedAt,
	}
	if p.Shelter != nil {
		dto.Shelter = &ShelterDTO{
			ID:       p.Shelter.ID,
			Username: p.Shelter.Username,
			Email:    p.Shelter.Email,
			FullName: p.Shelter.FullName,
			Phone:    p.Shelter.Phone,
			Address:  p.Shelter.Address,
		}
	}
	return dto
}

// FromModels maps a slice of pets.
func FromModels(list []models.Pet) []PetDTO {
	out := make([]PetDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
