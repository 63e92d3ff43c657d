package enums

import "strings"

// DonationStatus records how far a donation payment progressed.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusCompleted DonationStatus = "COMPLETED"
	DonationStatusFailed    DonationStatus = "FAILED"
)

func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationStatusPending, DonationStatusCompleted, DonationStatusFailed:
		return true
	}
	return false
}

// NormalizeDonationStatus upper-cases value and falls back to COMPLETED.
func NormalizeDonationStatus(value string) DonationStatus {
	s := DonationStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !s.IsValid() {
		return DonationStatusCompleted
	}
	return s
}

const (
	DonationMethodPayPal = "PAYPAL"
	DonationMethodCash   = "CASH"
)
