package backauth

import "strings"

// UserRole is a back-office actor kind. Comparisons always happen on the
// normalized upper-case value; use ParseRole on anything read from storage.
type UserRole string

const (
	// RoleAdministrator has no path restrictions beyond authentication.
	RoleAdministrator UserRole = "ADMINISTRATOR"
	// RoleSupervisor manages operational and reporting areas.
	RoleSupervisor UserRole = "SUPERVISOR"
	// RoleStaff is field staff limited to operational management paths.
	RoleStaff UserRole = "STAFF"
	// RoleAuditor is limited to read and reporting paths.
	RoleAuditor UserRole = "AUDITOR"
	// RoleMerchant only sees the merchant portal.
	RoleMerchant UserRole = "MERCHANT"
)

// roleMerchantAlias is the legacy spelling still present in older cookies
// and user records. Both spellings must behave identically everywhere.
const roleMerchantAlias UserRole = "COMMERCANT"

// ParseRole normalizes a raw role string (case-insensitive, alias-aware)
// into a valid UserRole. The second return value is false for anything
// outside the enumeration.
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if role == roleMerchantAlias {
		return RoleMerchant, true
	}
	if role.IsValid() {
		return role, true
	}
	return "", false
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleSupervisor, RoleStaff, RoleAuditor, RoleMerchant:
		return true
	default:
		return false
	}
}

// IsMerchant reports whether the role is the merchant role under either spelling.
func (r UserRole) IsMerchant() bool {
	role, ok := ParseRole(string(r))
	return ok && role == RoleMerchant
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{
		RoleAdministrator,
		RoleSupervisor,
		RoleStaff,
		RoleAuditor,
		RoleMerchant,
	}
}
