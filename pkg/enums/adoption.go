package enums

import (
	"fmt"
	"strings"
)

// AdoptionStatus is the decision state of an adoption application.
type AdoptionStatus string

const (
	AdoptionStatusPending  AdoptionStatus = "PENDING"
	AdoptionStatusApproved AdoptionStatus = "APPROVED"
	AdoptionStatusRejected AdoptionStatus = "REJECTED"
)

var validAdoptionStatuses = []AdoptionStatus{
	AdoptionStatusPending,
	AdoptionStatusApproved,
	AdoptionStatusRejected,
}

func (s AdoptionStatus) String() string { return string(s) }

// IsValid reports whether the value is a known AdoptionStatus.
func (s AdoptionStatus) IsValid() bool {
	for _, candidate := range validAdoptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAdoptionStatus upper-cases the input before matching.
func ParseAdoptionStatus(value string) (AdoptionStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validAdoptionStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adoption status %q", value)
}
