package adoptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists adoption applications.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, adoption *models.Adoption) error {
	return r.db.WithContext(ctx).Omit("User", "Pet").Create(adoption).Error
}

// Save writes every column. Associations are never touched.
func (r *Repository) Save(ctx context.Context, adoption *models.Adoption) error {
	return r.db.WithContext(ctx).Omit("User", "Pet").Save(adoption).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Adoption{}, "id = ?", id).Error
}

// FindByID loads the application with its adopter, pet and the pet's shelter.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Adoption, error) {
	var adoption models.Adoption
	if err := r.preloaded(ctx).First(&adoption, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adoption, nil
}

// List returns applications matching filter, most recent first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.Adoption, error) {
	qb := r.preloaded(ctx)
	if filter.UserID != nil {
		qb = qb.Where("user_id = ?", *filter.UserID)
	}
	if filter.PetID != nil {
		qb = qb.Where("pet_id = ?", *filter.PetID)
	}
	var list []models.Adoption
	if err := qb.Order("applied_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Stats counts applications by status plus those applied since monthStart.
func (r *Repository) Stats(ctx context.Context, monthStart time.Time) (Stats, error) {
	var rows []struct {
		Status enums.AdoptionStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Adoption{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, row := range rows {
		stats.Total += row.Total
		switch row.Status {
		case enums.AdoptionStatusPending:
			stats.Pending = row.Total
		case enums.AdoptionStatusApproved:
			stats.Approved = row.Total
		case enums.AdoptionStatusRejected:
			stats.Rejected = row.Total
		}
	}
	if err := r.db.WithContext(ctx).Model(&models.Adoption{}).
		Where("applied_at >= ?", monthStart).
		Count(&stats.ThisMonth).Error; err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Pet").Preload("Pet.Shelter")
}
