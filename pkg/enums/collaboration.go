package enums

import (
	"fmt"
	"strings"
)

// CollaborationStatus tracks an invitation between shelters.
type CollaborationStatus string

const (
	CollaborationStatusPending  CollaborationStatus = "PENDING"
	CollaborationStatusAccepted CollaborationStatus = "ACCEPTED"
	CollaborationStatusRejected CollaborationStatus = "REJECTED"
)

func (s CollaborationStatus) IsValid() bool {
	switch s {
	case CollaborationStatusPending, CollaborationStatusAccepted, CollaborationStatusRejected:
		return true
	}
	return false
}

// CollaborationAction is the invitee's answer to a request.
type CollaborationAction string

const (
	CollaborationActionAccept CollaborationAction = "ACCEPT"
	CollaborationActionReject CollaborationAction = "REJECT"
)

// ParseCollaborationAction accepts ACCEPT or REJECT in any case.
func ParseCollaborationAction(value string) (CollaborationAction, error) {
	switch a := CollaborationAction(strings.ToUpper(strings.TrimSpace(value))); a {
	case CollaborationActionAccept, CollaborationActionReject:
		return a, nil
	}
	return "", fmt.Errorf("invalid collaboration action %q", value)
}

// Status maps the action onto the resulting request status.
func (a CollaborationAction) Status() CollaborationStatus {
	if a == CollaborationActionAccept {
		return CollaborationStatusAccepted
	}
	return CollaborationStatusRejected
}
