package enums

import (
	"fmt"
	"strings"
)

type EventCategory string

const (
	EventCategoryAdoption    EventCategory = "ADOPTION"
	EventCategoryFundraising EventCategory = "FUNDRAISING"
	EventCategoryVolunteer   EventCategory = "VOLUNTEER"
	EventCategoryEducation   EventCategory = "EDUCATION"
	EventCategoryOther       EventCategory = "OTHER"
)

var validEventCategories = []EventCategory{
	EventCategoryAdoption,
	EventCategoryFundraising,
	EventCategoryVolunteer,
	EventCategoryEducation,
	EventCategoryOther,
}

func (c EventCategory) IsValid() bool {
	for _, candidate := range validEventCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseEventCategory(value string) (EventCategory, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validEventCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event category %q", value)
}

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "UPCOMING"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

var validEventStatuses = []EventStatus{
	EventStatusUpcoming,
	EventStatusOngoing,
	EventStatusCompleted,
	EventStatusCancelled,
}

func (s EventStatus) IsValid() bool {
	for _, candidate := range validEventStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseEventStatus(value string) (EventStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validEventStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event status %q", value)
}
