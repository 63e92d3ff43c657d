package enums

import (
	"fmt"
	"strings"
)

// PetStatus tracks catalog availability. Adoption decisions never change it.
type PetStatus string

const (
	PetStatusAvailable PetStatus = "AVAILABLE"
	PetStatusAdopted   PetStatus = "ADOPTED"
	PetStatusPending   PetStatus = "PENDING"
)

var validPetStatuses = []PetStatus{PetStatusAvailable, PetStatusAdopted, PetStatusPending}

func (s PetStatus) String() string { return string(s) }

func (s PetStatus) IsValid() bool {
	for _, candidate := range validPetStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePetStatus converts raw input into a PetStatus.
func ParsePetStatus(value string) (PetStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPetStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pet status %q", value)
}

type PetGender string

const (
	PetGenderMale   PetGender = "MALE"
	PetGenderFemale PetGender = "FEMALE"
)

func (g PetGender) IsValid() bool {
	return g == PetGenderMale || g == PetGenderFemale
}

// ParsePetGender converts raw input into a PetGender.
func ParsePetGender(value string) (PetGender, error) {
	g := PetGender(strings.ToUpper(strings.TrimSpace(value)))
	if !g.IsValid() {
		return "", fmt.Errorf("invalid pet gender %q", value)
	}
	return g, nil
}
