package donations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "VND"

// DonationInput is the create and update payload. On update, nil and blank
// fields keep the stored value.
type DonationInput struct {
	UserID        *uuid.UUID       `json:"userId"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      string           `json:"currency" validate:"omitempty,len=3"`
	Method        string           `json:"method"`
	PaymentMethod string           `json:"paymentMethod"`
	Status        string           `json:"status"`
	TransactionID *string          `json:"transactionId"`
	DonatedAt     *time.Time       `json:"donationDate"`
}

// Statistics summarises donations for the admin dashboard.
type Statistics struct {
	TotalDonations     int64           `json:"totalDonations"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	UniqueDonors       int64           `json:"uniqueDonors"`
	ThisMonthAmount    decimal.Decimal `json:"thisMonthAmount"`
	MonthlyGoal        decimal.Decimal `json:"monthlyGoal"`
	ProgressPercentage float64         `json:"progressPercentage"`
}

// CreateOrderRequest starts a PayPal checkout.
type CreateOrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// VerifyRequest is the client's claim about a finished payment.
type VerifyRequest struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// CallbackResult is returned to the PayPal success redirect.
type CallbackResult struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	DonationID    uuid.UUID `json:"donationId"`
	TransactionID string    `json:"transactionId"`
}
