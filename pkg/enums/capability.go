package enums

// Capability names a protected operation. Each route declares the capability
// it needs and the role table below decides who holds it.
type Capability string

const (
	CapabilitySubmitScreening  Capability = "screening:submit"
	CapabilityApplyAdoption    Capability = "adoption:apply"
	CapabilityReviewAdoption   Capability = "adoption:review"
	CapabilityListAllAdoptions Capability = "adoption:list_all"
	CapabilityAdoptionStats    Capability = "adoption:stats"
	CapabilityManagePets       Capability = "pet:manage"
	CapabilityCreateEvent      Capability = "event:create"
	CapabilityEditEvent        Capability = "event:edit"
	CapabilityListEventMembers Capability = "event:list_candidates"
	CapabilityShelterEvents    Capability = "event:shelter_view"
	CapabilityVolunteerEvents  Capability = "event:volunteer_view"
	CapabilityCollaborate      Capability = "collaboration:manage"
	CapabilityManageUsers      Capability = "user:manage"
	CapabilityManageDonations  Capability = "donation:manage"
	CapabilityDonationStats    Capability = "donation:stats"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdopter: {
		CapabilitySubmitScreening,
		CapabilityApplyAdoption,
	},
	RoleDonor: {
		CapabilitySubmitScreening,
	},
	RoleShelter: {
		CapabilitySubmitScreening,
		CapabilityReviewAdoption,
		CapabilityListAllAdoptions,
		CapabilityManagePets,
		CapabilityCreateEvent,
		CapabilityEditEvent,
		CapabilityShelterEvents,
		CapabilityCollaborate,
	},
	RoleShelterStaff: {
		CapabilitySubmitScreening,
		CapabilityCollaborate,
	},
	RoleVolunteer: {
		CapabilitySubmitScreening,
		CapabilityEditEvent,
		CapabilityVolunteerEvents,
	},
	RoleAdmin: {
		CapabilitySubmitScreening,
		CapabilityReviewAdoption,
		CapabilityListAllAdoptions,
		CapabilityAdoptionStats,
		CapabilityManagePets,
		CapabilityEditEvent,
		CapabilityListEventMembers,
		CapabilityManageUsers,
		CapabilityManageDonations,
		CapabilityDonationStats,
	},
}

// Can reports whether the role holds the capability.
func (r Role) Can(capability Capability) bool {
	for _, held := range roleCapabilities[r] {
		if held == capability {
			return true
		}
	}
	return false
}
