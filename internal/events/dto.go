package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
)

// ViewVersion is bumped whenever the EventView shape changes.
const ViewVersion = 1

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	ShelterID *uuid.UUID
	Category  string
	Status    string
	Search    string
}

// EventInput carries create and update fields. On update, nil fields and nil
// participant lists keep the stored value.
type EventInput struct {
	Title           *string     `json:"title" validate:"omitempty,max=200"`
	Description     *string     `json:"description"`
	Date            *time.Time  `json:"date"`
	Location        *string     `json:"location"`
	Category        *string     `json:"category"`
	Status          *string     `json:"status"`
	StartTime       *string     `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime         *string     `json:"endTime" validate:"omitempty,datetime=15:04"`
	MaxParticipants *int        `json:"maxParticipants" validate:"omitempty,min=0"`
	CollaboratorIDs []uuid.UUID `json:"shelterIds"`
	VolunteerIDs    []uuid.UUID `json:"volunteerIds"`
	DonorIDs        []uuid.UUID `json:"donorIds"`
}

// Participant is a user attached to an event.
type Participant struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
}

// Candidate is a user offered in the event assignment form.
type Candidate struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
}

// EventView is the read projection of an Event. The Event record stays the
// source of truth.
type EventView struct {
	Version         int                 `json:"version"`
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Date            time.Time           `json:"date"`
	Location        string              `json:"location"`
	Category        enums.EventCategory `json:"category"`
	Status          enums.EventStatus   `json:"status"`
	StartTime       string              `json:"startTime"`
	EndTime         string              `json:"endTime"`
	MaxParticipants int                 `json:"maxParticipants"`
	MainShelter     *Participant        `json:"mainShelter,omitempty"`
	Collaborators   []Participant       `json:"shelters"`
	Volunteers      []Participant       `json:"volunteers"`
	Donors          []Participant       `json:"donors"`
}

// CollaborationDTO is the transport shape of an invitation.
type CollaborationDTO struct {
	ID          uuid.UUID                 `json:"id"`
	EventID     uuid.UUID                 `json:"eventId"`
	EventTitle  string                    `json:"eventTitle"`
	Requester   *Participant              `json:"requester,omitempty"`
	Invitee     *Participant              `json:"invitee,omitempty"`
	Status      enums.CollaborationStatus `json:"status"`
	Message     *string                   `json:"message,omitempty"`
	RespondedAt *time.Time                `json:"respondedAt,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// InviteRequest is the optional body of an invitation.
type InviteRequest struct {
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

// RespondRequest is the invitee's answer.
type RespondRequest struct {
	Action string `json:"action" validate:"required"`
}

// Project builds the versioned read view of event.
func Project(event *models.Event) *EventView {
	if event == nil {
		return nil
	}
	return &EventView{
		Version:         ViewVersion,
		ID:              event.ID,
		Title:           event.Title,
		Description:     event.Description,
		Date:            event.Date,
		Location:        event.Location,
		Category:        event.Category,
		Status:          event.Status,
		StartTime:       event.StartTime,
		EndTime:         event.EndTime,
		MaxParticipants: event.MaxParticipants,
		MainShelter:     participant(event.MainShelter),
		Collaborators:   participants(event.Collaborators),
		Volunteers:      participants(event.Volunteers),
		Donors:          participants(event.Donors),
	}
}

// ProjectAll maps a slice of events.
func ProjectAll(list []models.Event) []EventView {
	out := make([]EventView, 0, len(list))
	for i := range list {
		out = append(out, *Project(&list[i]))
	}
	return out
}

func FromRequest(r *models.CollaborationRequest) *CollaborationDTO {
	if r == nil {
		return nil
	}
	dto := &CollaborationDTO{
		ID:          r.ID,
		EventID:     r.EventID,
		Requester:   participant(r.Requester),
		Invitee:     participant(r.Invitee),
		Status:      r.Status,
		Message:     r.Message,
		RespondedAt: r.RespondedAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.Event != nil {
		dto.EventTitle = r.Event.Title
	}
	return dto
}

func FromRequests(list []models.CollaborationRequest) []CollaborationDTO {
	out := make([]CollaborationDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromRequest(&list[i]))
	}
	return out
}

func participant(u *models.User) *Participant {
	if u == nil {
		return nil
	}
	return &Participant{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

func participants(list []models.User) []Participant {
	out := make([]Participant, 0, len(list))
	for i := range list {
		out = append(out, *participant(&list[i]))
	}
	return out
}
