package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Donation records a gift. Method and PaymentMethod carry the same value.
type Donation struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        *uuid.UUID           `gorm:"type:uuid;index" json:"userId,omitempty"`
	User          *User                `gorm:"foreignKey:UserID" json:"-"`
	Amount        decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency      string               `gorm:"type:text;not null" json:"currency"`
	Method        string               `gorm:"type:text;not null" json:"method"`
	PaymentMethod string               `gorm:"type:text;not null" json:"paymentMethod"`
	Status        enums.DonationStatus `gorm:"type:text;not null" json:"status"`
	TransactionID *string              `gorm:"type:text;index" json:"transactionId,omitempty"`
	DonatedAt     time.Time            `gorm:"not null;index" json:"donationDate"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (d *Donation) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// SetMethod keeps both method columns in sync.
func (d *Donation) SetMethod(method string) {
	d.Method = method
	d.PaymentMethod = method
}
