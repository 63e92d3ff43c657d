package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists donations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(donation).Error
}

func (r *Repository) Save(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(donation).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Donation{}, "id = ?", id).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Preload("User").First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// List returns donations newest first, optionally for one user.
func (r *Repository) List(ctx context.Context, userID *uuid.UUID) ([]models.Donation, error) {
	qb := r.db.WithContext(ctx).Preload("User")
	if userID != nil {
		qb = qb.Where("user_id = ?", *userID)
	}
	var list []models.Donation
	if err := qb.Order("donated_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Totals aggregates every donation plus the amount given since monthStart.
func (r *Repository) Totals(ctx context.Context, monthStart time.Time) (Statistics, error) {
	var row struct {
		Count        int64
		Amount       decimal.NullDecimal
		UniqueDonors int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("COUNT(*) AS count, SUM(amount) AS amount, COUNT(DISTINCT user_id) AS unique_donors").
		Scan(&row).Error; err != nil {
		return Statistics{}, err
	}

	var month struct {
		Amount decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("SUM(amount) AS amount").
		Where("donated_at >= ?", monthStart).
		Scan(&month).Error; err != nil {
		return Statistics{}, err
	}

	return Statistics{
		TotalDonations:  row.Count,
		TotalAmount:     row.Amount.Decimal,
		UniqueDonors:    row.UniqueDonors,
		ThisMonthAmount: month.Amount.Decimal,
	}, nil
}
