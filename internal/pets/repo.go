package pets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes pet persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, pet *models.Pet) error {
	return r.db.WithContext(ctx).Create(pet).Error
}

func (r *Repository) Save(ctx context.Context, pet *models.Pet) error {
	return r.db.WithContext(ctx).Omit("Shelter").Save(pet).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Pet{}, "id = ?", id).Error
}

// FindByID loads a pet together with its shelter.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).Preload("Shelter").First(&pet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// FindByIDs loads the listed pets keyed by id. Unknown ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Pet, error) {
	out := make(map[uuid.UUID]models.Pet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []models.Pet
	if err := r.db.WithContext(ctx).Preload("Shelter").Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// List returns one page of pets matching filter, newest first, plus the total match count.
func (r *Repository) List(ctx context.Context, filter Filter, page pagination.Page) ([]models.Pet, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Pet{})

	if status := strings.TrimSpace(filter.Status); status != "" {
		qb = qb.Where("UPPER(status) = ?", strings.ToUpper(status))
	}
	if breed := strings.TrimSpace(filter.Breed); breed != "" {
		qb = qb.Where("LOWER(breed) LIKE ?", likePattern(breed))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		qb = qb.Where("LOWER(location) LIKE ?", likePattern(location))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.Age != nil {
		qb = qb.Where("age = ?", *filter.Age)
	}
	if filter.AgeMin != nil {
		qb = qb.Where("age >= ?", *filter.AgeMin)
	}
	if filter.AgeMax != nil {
		qb = qb.Where("age <= ?", *filter.AgeMax)
	}

	var total int64
	if err := qb.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	n := page.Normalize()
	var list []models.Pet
	if err := qb.Preload("Shelter").
		Order("created_at DESC").Order("id DESC").
		Offset(n.Offset()).Limit(n.Size).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func likePattern(value string) string {
	return "%" + strings.ToLower(value) + "%"
}
