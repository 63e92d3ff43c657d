package enums

import (
	"fmt"
	"strings"
)

// Role is the single platform role held by a user.
type Role string

const (
	RoleAdopter      Role = "ADOPTER"
	RoleDonor        Role = "DONOR"
	RoleShelter      Role = "SHELTER"
	RoleShelterStaff Role = "SHELTER_STAFF"
	RoleVolunteer    Role = "VOLUNTEER"
	RoleAdmin        Role = "ADMIN"
)

var validRoles = []Role{
	RoleAdopter,
	RoleDonor,
	RoleShelter,
	RoleShelterStaff,
	RoleVolunteer,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role. Matching is case-insensitive.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// SelfRegistrable reports whether a user may pick this role at sign-up.
func (r Role) SelfRegistrable() bool {
	return r.IsValid() && r != RoleAdmin && r != RoleShelter
}

// RegistrationRole resolves the role requested at sign-up. Unknown or
// privileged roles fall back to ADOPTER.
func RegistrationRole(requested string) Role {
	role, err := ParseRole(requested)
	if err != nil || !role.SelfRegistrable() {
		return RoleAdopter
	}
	return role
}
