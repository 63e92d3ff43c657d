package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollaborationRepository persists invitations between shelters.
type CollaborationRepository struct {
	db *gorm.DB
}

func NewCollaborationRepository(db *gorm.DB) *CollaborationRepository {
	return &CollaborationRepository{db: db}
}

func (r *CollaborationRepository) Create(ctx context.Context, req *models.CollaborationRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *CollaborationRepository) Save(ctx context.Context, req *models.CollaborationRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}

func (r *CollaborationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CollaborationRequest, error) {
	var req models.CollaborationRequest
	if err := r.preloaded(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPending reports whether inviteeID already holds a pending request for eventID.
func (r *CollaborationRepository) HasPending(ctx context.Context, eventID, inviteeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CollaborationRequest{}).
		Where("event_id = ? AND invitee_id = ? AND status = ?", eventID, inviteeID, enums.CollaborationStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *CollaborationRepository) ListByInvitee(ctx context.Context, inviteeID uuid.UUID, status enums.CollaborationStatus) ([]models.CollaborationRequest, error) {
	return r.list(ctx, "invitee_id = ? AND status = ?", inviteeID, status)
}

func (r *CollaborationRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, status enums.CollaborationStatus) ([]models.CollaborationRequest, error) {
	return r.list(ctx, "requester_id = ? AND status = ?", requesterID, status)
}

func (r *CollaborationRepository) list(ctx context.Context, where string, args ...any) ([]models.CollaborationRequest, error) {
	var list []models.CollaborationRequest
	if err := r.preloaded(ctx).Where(where, args...).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CollaborationRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Event").Preload("Requester").Preload("Invitee")
}
