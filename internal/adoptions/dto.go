package adoptions

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
)

// Filter narrows List. Nil fields are ignored.
type Filter struct {
	UserID *uuid.UUID
	PetID  *uuid.UUID
}

// ApplyRequest is the payload of a single-pet application.
type ApplyRequest struct {
	PetID   uuid.UUID `json:"petId" validate:"required"`
	Message string    `json:"message" validate:"max=2000"`
}

// CartApplyRequest is the payload of a cart conversion.
type CartApplyRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

// StatusRequest overrides the decision of an application. Blank notes are
// left unchanged.
type StatusRequest struct {
	Status       string `json:"status" validate:"required"`
	AdminNotes   string `json:"adminNotes"`
	ShelterNotes string `json:"shelterNotes"`
}

// UpdateInput replaces the editable fields of an application.
type UpdateInput struct {
	Status       string  `json:"status" validate:"required"`
	Message      *string `json:"message"`
	AdminNotes   *string `json:"adminNotes"`
	ShelterNotes *string `json:"shelterNotes"`
}

// Stats summarises applications for the admin dashboard.
type Stats struct {
	Total     int64 `json:"totalAdoptions"`
	Pending   int64 `json:"pendingAdoptions"`
	Approved  int64 `json:"approvedAdoptions"`
	Rejected  int64 `json:"rejectedAdoptions"`
	ThisMonth int64 `json:"thisMonthAdoptions"`
}

// ApplicantDTO is the adopter as shown on an application.
type ApplicantDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Phone    *string   `json:"phone,omitempty"`
	Address  *string   `json:"address,omitempty"`
}

// AdoptionDTO is the transport shape of an application.
type AdoptionDTO struct {
	ID              uuid.UUID            `json:"id"`
	Status          enums.AdoptionStatus `json:"status"`
	Message         string               `json:"message"`
	ApplicationDate time.Time            `json:"applicationDate"`
	AdminNotes      *string              `json:"adminNotes,omitempty"`
	ShelterNotes    *string              `json:"shelterNotes,omitempty"`
	User            *ApplicantDTO        `json:"user,omitempty"`
	Pet             *pets.PetDTO         `json:"pet,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func FromModel(a *models.Adoption) *AdoptionDTO {
	if a == nil {
		return nil
	}
	dto := &AdoptionDTO{
		ID:              a.ID,
		Status:          a.Status,
		Message:         a.Message,
		ApplicationDate: a.AppliedAt,
		AdminNotes:      a.AdminNotes,
		ShelterNotes:    a.ShelterNotes,
		Pet:             pets.FromModel(a.Pet),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.User != nil {
		dto.User = &ApplicantDTO{
			ID:       a.User.ID,
			Username: a.User.Username,
			FullName: a.User.FullName,
			Email:    a.User.Email,
			Phone:    a.User.Phone,
			Address:  a.User.Address,
		}
	}
	return dto
}

// FromModels maps a slice of applications.
func FromModels(list []models.Adoption) []AdoptionDTO {
	out := make([]AdoptionDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
