package types

// UserRole is the closed set of roles. Authorization is decided from the
// role's capability set once per request at the auth boundary, never by ad
// hoc string comparison in handlers.
type UserRole string

const (
	UserRoleSubscriber    UserRole = "subscriber"
	UserRoleEmployee      UserRole = "employee"
	UserRoleSuperAdmin    UserRole = "super_admin"
	UserRoleAttorneyAdmin UserRole = "attorney_admin"
)

var UserRoles = []UserRole{
	UserRoleSubscriber,
	UserRoleEmployee,
	UserRoleSuperAdmin,
	UserRoleAttorneyAdmin,
}

func (r UserRole) Valid() bool {
	for _, role := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// Capability is a single permission a role grants.
type Capability string

const (
	CapabilityGenerateLetters    Capability = "generate_letters"
	CapabilityReviewLetters      Capability = "review_letters"
	CapabilityCompleteLetters    Capability = "complete_letters"
	CapabilityViewAllLetters     Capability = "view_all_letters"
	CapabilityViewCommissions    Capability = "view_commissions"
	CapabilityManageUsers        Capability = "manage_users"
	CapabilityUnlimitedAllowance Capability = "unlimited_allowance"
)

var roleCapabilities = map[UserRole]map[Capability]struct{}{
	UserRoleSubscriber: {
		CapabilityGenerateLetters: {},
	},
	UserRoleEmployee: {
		CapabilityViewCommissions: {},
	},
	UserRoleAttorneyAdmin: {
		CapabilityReviewLetters:  {},
		CapabilityViewAllLetters: {},
	},
	UserRoleSuperAdmin: {
		CapabilityGenerateLetters:    {},
		CapabilityReviewLetters:      {},
		CapabilityCompleteLetters:    {},
		CapabilityViewAllLetters:     {},
		CapabilityViewCommissions:    {},
		CapabilityManageUsers:        {},
		CapabilityUnlimitedAllowance: {},
	},
}

// HasCapability reports whether the role grants the capability.
func (r UserRole) HasCapability(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}

// IsAdmin reports whether the role can see letters it does not own.
func (r UserRole) IsAdmin() bool {
	return r.HasCapability(CapabilityViewAllLetters)
}
