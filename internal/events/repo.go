package events

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists events and their participant join tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the event and links the participants already set on it.
// Participant rows themselves are never upserted.
func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).
		Omit("MainShelter", "Collaborators.*", "Volunteers.*", "Donors.*").
		Create(event).Error
}

// Save writes the event columns only.
func (r *Repository) Save(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

// ReplaceParticipants rewrites one join table (Collaborators, Volunteers or Donors).
func (r *Repository) ReplaceParticipants(ctx context.Context, event *models.Event, association string, users []models.User) error {
	assoc := r.db.WithContext(ctx).Model(event).Omit(association + ".*").Association(association)
	if len(users) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(users)
}

// AddCollaborator links user as a collaborating shelter.
func (r *Repository) AddCollaborator(ctx context.Context, event *models.Event, user *models.User) error {
	return r.db.WithContext(ctx).Model(event).Omit("Collaborators.*").Association("Collaborators").Append(user)
}

// Delete removes the event, its join rows and its collaboration requests.
func (r *Repository) Delete(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.CollaborationRequest{}).Error; err != nil {
			return err
		}
		for _, assoc := range []string{"Collaborators", "Volunteers", "Donors"} {
			if err := tx.Model(event).Association(assoc).Clear(); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Event{}, "id = ?", event.ID).Error
	})
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.preloaded(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns events matching filter ordered by date. A shelter filter
// matches both main and collaborating shelters.
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.Event, error) {
	qb := r.preloaded(ctx)
	if filter.ShelterID != nil {
		qb = qb.Where("main_shelter_id = ? OR id IN (?)", *filter.ShelterID,
			r.db.Table("event_collaborators").Select("event_id").Where("user_id = ?", *filter.ShelterID))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		qb = qb.Where("UPPER(category) = ?", strings.ToUpper(category))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		qb = qb.Where("UPPER(status) = ?", strings.ToUpper(status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)", pattern, pattern, pattern)
	}
	var list []models.Event
	if err := qb.Order("date ASC").Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListForVolunteer returns the events userID volunteers on.
func (r *Repository) ListForVolunteer(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	var list []models.Event
	err := r.preloaded(ctx).
		Where("id IN (?)", r.db.Table("event_volunteers").Select("event_id").Where("user_id = ?", userID)).
		Order("date ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("MainShelter").
		Preload("Collaborators").
		Preload("Volunteers").
		Preload("Donors")
}
