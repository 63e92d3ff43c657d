package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	defaultTitle           = "New Event"
	defaultDescription     = "Event Description"
	defaultLocation        = "Event Location"
	defaultStartTime       = "09:00"
	defaultEndTime         = "17:00"
	defaultMaxParticipants = 100
)

// Service manages events and the collaboration workflow between shelters.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, role enums.Role, input EventInput) (*EventView, error)
	Update(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID, input EventInput) (*EventView, error)
	Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*EventView, error)
	List(ctx context.Context, filter Filter) ([]EventView, error)
	ListForShelter(ctx context.Context, shelterID uuid.UUID) ([]EventView, error)
	ListForVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]EventView, error)
	Candidates(ctx context.Context, role enums.Role) ([]Candidate, error)

	Invite(ctx context.Context, eventID, inviteeID, requesterID uuid.UUID, message *string) (*CollaborationDTO, error)
	Respond(ctx context.Context, requestID, responderID uuid.UUID, action string) (*CollaborationDTO, error)
	ListPending(ctx context.Context, inviteeID uuid.UUID) ([]CollaborationDTO, error)
	ListSent(ctx context.Context, requesterID uuid.UUID) ([]CollaborationDTO, error)
}

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Save(ctx context.Context, event *models.Event) error
	ReplaceParticipants(ctx context.Context, event *models.Event, association string, users []models.User) error
	AddCollaborator(ctx context.Context, event *models.Event, user *models.User) error
	Delete(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, filter Filter) ([]models.Event, error)
	ListForVolunteer(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
}

type collaborationRepository interface {
	Create(ctx context.Context, req *models.CollaborationRequest) error
	Save(ctx context.Context, req *models.CollaborationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CollaborationRequest, error)
	HasPending(ctx context.Context, eventID, inviteeID uuid.UUID) (bool, error)
	ListByInvitee(ctx context.Context, inviteeID uuid.UUID, status enums.CollaborationStatus) ([]models.CollaborationRequest, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, status enums.CollaborationStatus) ([]models.CollaborationRequest, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	ListByRole(ctx context.Context, role enums.Role) ([]models.User, error)
}

type notifier interface {
	NotifyUser(ctx context.Context, user *models.User, kind enums.NotificationType, subject, body string)
	NotifyShelters(ctx context.Context, event *models.Event, shelters []models.User)
	NotifyVolunteers(ctx context.Context, event *models.Event, volunteers []models.User)
	NotifyDonors(ctx context.Context, event *models.Event, donors []models.User)
}

// ServiceParams wires the event collaborators.
type ServiceParams struct {
	Events         eventRepository
	Collaborations collaborationRepository
	Users          userDirectory
	Notifier       notifier
	Now            func() time.Time
}

type service struct {
	events         eventRepository
	collaborations collaborationRepository
	users          userDirectory
	notifier       notifier
	now            func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Events == nil:
		return nil, fmt.Errorf("event repository required")
	case params.Collaborations == nil:
		return nil, fmt.Errorf("collaboration repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("user directory required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		events:         params.Events,
		collaborations: params.Collaborations,
		users:          params.Users,
		notifier:       params.Notifier,
		now:            now,
	}, nil
}

// participantSet is the resolved membership of an event, by role.
type participantSet struct {
	collaborators []models.User
	volunteers    []models.User
	donors        []models.User
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, role enums.Role, input EventInput) (*EventView, error) {
	if !role.Can(enums.CapabilityCreateEvent) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only shelters can create events")
	}
	creator, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load creator")
	}

	event := &models.Event{
		Title:           defaultTitle,
		Description:     defaultDescription,
		Location:        defaultLocation,
		Date:            s.now().Add(24 * time.Hour),
		Category:        enums.EventCategoryAdoption,
		Status:          enums.EventStatusUpcoming,
		StartTime:       defaultStartTime,
		EndTime:         defaultEndTime,
		MaxParticipants: defaultMaxParticipants,
		MainShelterID:   creator.ID,
	}
	if err := applyInput(event, input); err != nil {
		return nil, err
	}

	members, err := s.resolveParticipants(ctx, input)
	if err != nil {
		return nil, err
	}
	event.Collaborators = members.collaborators
	event.Volunteers = members.volunteers
	event.Donors = members.donors

	if err := s.events.Create(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create event")
	}

	s.notifier.NotifyShelters(ctx, event, members.collaborators)
	s.notifier.NotifyVolunteers(ctx, event, members.volunteers)
	s.notifier.NotifyDonors(ctx, event, members.donors)
	s.notifier.NotifyUser(ctx, creator, enums.NotificationTypeEvent, "Event Created",
		"You have successfully created a new event: "+event.Title)

	return s.Get(ctx, event.ID)
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID, input EventInput) (*EventView, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeEdit(event, actorID, role); err != nil {
		return nil, err
	}
	if err := applyInput(event, input); err != nil {
		return nil, err
	}
	members, err := s.resolveParticipants(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.events.Save(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update event")
	}

	replacements := []struct {
		association string
		ids         []uuid.UUID
		users       []models.User
		notify      func(context.Context, *models.Event, []models.User)
	}{
		{"Collaborators", input.CollaboratorIDs, members.collaborators, s.notifier.NotifyShelters},
		{"Volunteers", input.VolunteerIDs, members.volunteers, s.notifier.NotifyVolunteers},
		{"Donors", input.DonorIDs, members.donors, s.notifier.NotifyDonors},
	}
	previous := map[string][]models.User{
		"Collaborators": event.Collaborators,
		"Volunteers":    event.Volunteers,
		"Donors":        event.Donors,
	}
	for _, r := range replacements {
		if r.ids == nil {
			continue
		}
		if err := s.events.ReplaceParticipants(ctx, event, r.association, r.users); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update event participants")
		}
		r.notify(ctx, event, newcomers(previous[r.association], r.users))
	}

	return s.Get(ctx, event.ID)
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID) error {
	event, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeEdit(event, actorID, role); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete event")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EventView, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return Project(event), nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]EventView, error) {
	list, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list events")
	}
	return ProjectAll(list), nil
}

func (s *service) ListForShelter(ctx context.Context, shelterID uuid.UUID) ([]EventView, error) {
	return s.List(ctx, Filter{ShelterID: &shelterID})
}

func (s *service) ListForVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]EventView, error) {
	list, err := s.events.ListForVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list volunteer events")
	}
	return ProjectAll(list), nil
}

// Candidates lists the users of role that can be assigned to an event.
func (s *service) Candidates(ctx context.Context, role enums.Role) ([]Candidate, error) {
	switch role {
	case enums.RoleShelter, enums.RoleVolunteer, enums.RoleDonor:
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "no event candidates for role %s", role)
	}
	list, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list candidates")
	}
	out := make([]Candidate, 0, len(list))
	for _, u := range list {
		out = append(out, Candidate{ID: u.ID, Name: u.FullName, Username: u.Username})
	}
	return out, nil
}

// Invite asks another shelter to co-host eventID. Only the main shelter may
// invite, and an invitee holds at most one pending request per event.
func (s *service) Invite(ctx context.Context, eventID, inviteeID, requesterID uuid.UUID, message *string) (*CollaborationDTO, error) {
	event, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.MainShelterID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the main shelter can invite collaborators")
	}
	invitee, err := s.users.FindByID(ctx, inviteeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invitee")
	}
	if invitee.Role != enums.RoleShelter {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invitee must be a shelter")
	}
	if event.HasCollaborator(invitee.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shelter is already a collaborator")
	}
	pending, err := s.collaborations.HasPending(ctx, event.ID, invitee.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pending invitation")
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a pending invitation already exists")
	}

	if message != nil && strings.TrimSpace(*message) == "" {
		message = nil
	}
	req := &models.CollaborationRequest{
		EventID:     event.ID,
		RequesterID: requesterID,
		InviteeID:   invitee.ID,
		Status:      enums.CollaborationStatusPending,
		Message:     message,
	}
	if err := s.collaborations.Create(ctx, req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create collaboration request")
	}

	s.notifier.NotifyUser(ctx, invitee, enums.NotificationTypeCollaboration, "New Collaboration Request",
		"You have been invited to collaborate on event: "+event.Title)

	req.Event = event
	req.Invitee = invitee
	req.Requester = event.MainShelter
	return FromRequest(req), nil
}

// Respond records the invitee's answer. Accepting adds the invitee to the
// event's collaborators.
func (s *service) Respond(ctx context.Context, requestID, responderID uuid.UUID, action string) (*CollaborationDTO, error) {
	req, err := s.collaborations.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collaboration request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collaboration request")
	}
	if req.InviteeID != responderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the invited shelter can respond to this request")
	}
	if req.Status != enums.CollaborationStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "this request has already been %s", strings.ToLower(string(req.Status)))
	}
	parsed, err := enums.ParseCollaborationAction(action)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid action, must be either ACCEPT or REJECT")
	}

	if parsed == enums.CollaborationActionAccept && req.Event != nil && req.Invitee != nil {
		if err := s.events.AddCollaborator(ctx, req.Event, req.Invitee); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add collaborator")
		}
	}

	respondedAt := s.now()
	req.Status = parsed.Status()
	req.RespondedAt = &respondedAt
	if err := s.collaborations.Save(ctx, req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save collaboration request")
	}

	if req.Requester != nil {
		title, responderName := "", ""
		if req.Event != nil {
			title = req.Event.Title
		}
		if req.Invitee != nil {
			responderName = req.Invitee.DisplayName()
		}
		s.notifier.NotifyUser(ctx, req.Requester, enums.NotificationTypeCollaboration,
			"Collaboration Request "+string(parsed),
			fmt.Sprintf("Your collaboration request for event '%s' has been %sED by %s", title, parsed, responderName))
	}
	return FromRequest(req), nil
}

func (s *service) ListPending(ctx context.Context, inviteeID uuid.UUID) ([]CollaborationDTO, error) {
	list, err := s.collaborations.ListByInvitee(ctx, inviteeID, enums.CollaborationStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending requests")
	}
	return FromRequests(list), nil
}

// ListSent returns the caller's invitations still awaiting an answer.
func (s *service) ListSent(ctx context.Context, requesterID uuid.UUID) ([]CollaborationDTO, error) {
	list, err := s.collaborations.ListByRequester(ctx, requesterID, enums.CollaborationStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sent requests")
	}
	return FromRequests(list), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event")
	}
	return event, nil
}

// resolveParticipants loads the listed users, keeping only those whose role
// matches the list they were named in.
func (s *service) resolveParticipants(ctx context.Context, input EventInput) (participantSet, error) {
	var set participantSet
	var err error
	if set.collaborators, err = s.usersWithRole(ctx, input.CollaboratorIDs, enums.RoleShelter); err != nil {
		return set, err
	}
	if set.volunteers, err = s.usersWithRole(ctx, input.VolunteerIDs, enums.RoleVolunteer); err != nil {
		return set, err
	}
	if set.donors, err = s.usersWithRole(ctx, input.DonorIDs, enums.RoleDonor); err != nil {
		return set, err
	}
	return set, nil
}

func (s *service) usersWithRole(ctx context.Context, ids []uuid.UUID, role enums.Role) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	list, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve participants")
	}
	out := make([]models.User, 0, len(list))
	for _, u := range list {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// authorizeEdit lets admins edit any event, shelters the events they host or
// co-host, and volunteers the events they are assigned to.
func authorizeEdit(event *models.Event, actorID uuid.UUID, role enums.Role) error {
	if !role.Can(enums.CapabilityEditEvent) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to edit events")
	}
	switch role {
	case enums.RoleAdmin:
		return nil
	case enums.RoleShelter:
		if event.MainShelterID == actorID || event.HasCollaborator(actorID) {
			return nil
		}
	case enums.RoleVolunteer:
		for _, v := range event.Volunteers {
			if v.ID == actorID {
				return nil
			}
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this event")
}

func applyInput(event *models.Event, input EventInput) error {
	if v := trimmed(input.Title); v != "" {
		event.Title = v
	}
	if v := trimmed(input.Description); v != "" {
		event.Description = v
	}
	if v := trimmed(input.Location); v != "" {
		event.Location = v
	}
	if input.Date != nil && !input.Date.IsZero() {
		event.Date = input.Date.UTC()
	}
	if v := trimmed(input.Category); v != "" {
		category, err := enums.ParseEventCategory(v)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		event.Category = category
	}
	if v := trimmed(input.Status); v != "" {
		status, err := enums.ParseEventStatus(v)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		event.Status = status
	}
	if v := trimmed(input.StartTime); v != "" {
		event.StartTime = v
	}
	if v := trimmed(input.EndTime); v != "" {
		event.EndTime = v
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "maxParticipants must not be negative")
		}
		event.MaxParticipants = *input.MaxParticipants
	}
	return nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// newcomers returns the users in next that were not in prev.
func newcomers(prev, next []models.User) []models.User {
	seen := make(map[uuid.UUID]struct{}, len(prev))
	for _, u := range prev {
		seen[u.ID] = struct{}{}
	}
	out := make([]models.User, 0, len(next))
	for _, u := range next {
		if _, ok := seen[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out
}
