package backauth

import "strings"

// Routes shared by the guard, the session manager, and the API client.
const (
	// LoginRoute is the single shared login path for every role.
	LoginRoute = "/login"
	// GeneralLandingRoute is where every non-merchant role lands.
	GeneralLandingRoute = "/dashboard"
	// MerchantLandingRoute is where the merchant role lands.
	MerchantLandingRoute = "/merchant/dashboard"
	// NotFoundRoute is the shared not-found page for global 403/404 routing.
	NotFoundRoute = "/not-found"
	// MerchantPortalPrefix scopes the merchant portal. Matching is per path
	// segment: the back-office "/merchants" area is NOT under this prefix.
	MerchantPortalPrefix = "/merchant"
)

// Policy is the single role→path table consumed by both the route guard and
// link-visibility logic, so the two can never drift apart.
type Policy struct {
	prefixes map[UserRole][]string
	landing  map[UserRole]string
	public   []string
}

// DefaultPolicy returns the back-office policy table.
func DefaultPolicy() *Policy {
	return &Policy{
		prefixes: map[UserRole][]string{
			// nil means unrestricted past authentication
			RoleAdministrator: nil,
			RoleSupervisor: {
				GeneralLandingRoute,
				"/merchants",
				"/agents",
				"/pos",
				"/markets",
				"/collections",
				"/reports",
				"/approvals",
			},
			RoleStaff: {
				GeneralLandingRoute,
				"/merchants",
				"/pos",
				"/markets",
				"/collections",
			},
			RoleAuditor: {
				GeneralLandingRoute,
				"/reports",
				"/transactions",
			},
			RoleMerchant: {MerchantPortalPrefix},
		},
		landing: map[UserRole]string{
			RoleAdministrator: GeneralLandingRoute,
			RoleSupervisor:    GeneralLandingRoute,
			RoleStaff:         GeneralLandingRoute,
			RoleAuditor:       GeneralLandingRoute,
			RoleMerchant:      MerchantLandingRoute,
		},
		public: []string{
			LoginRoute,
			"/favicon.ico",
			"/static",
			"/assets",
		},
	}
}

// Landing returns the role's post-login dashboard route.
func (p *Policy) Landing(role UserRole) string {
	if route, ok := p.landing[role]; ok {
		return route
	}
	return GeneralLandingRoute
}

// IsPublic reports whether a path is reachable without authentication.
func (p *Policy) IsPublic(path string) bool {
	for _, prefix := range p.public {
		if HasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Allowed reports whether a role may navigate to a path. It assumes the
// caller already verified a token is present; public paths are handled by
// the guard before this check.
func (p *Policy) Allowed(role UserRole, path string) bool {
	// the merchant portal is exclusive both ways
	if HasPathPrefix(path, MerchantPortalPrefix) {
		return role == RoleMerchant
	}
	if role == RoleMerchant {
		return false
	}

	prefixes, ok := p.prefixes[role]
	if !ok {
		return false
	}
	if prefixes == nil {
		return true
	}
	for _, prefix := range prefixes {
		if HasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// CanNavigate reports whether a link target should be visible for a role.
// Sidebar and menu code share the guard's table through this accessor.
func (p *Policy) CanNavigate(role UserRole, path string) bool {
	if p.IsPublic(path) {
		return true
	}
	return p.Allowed(role, path)
}

// HasPathPrefix matches whole path segments: "/merchant" covers "/merchant"
// and "/merchant/devices" but never "/merchants".
func HasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}
