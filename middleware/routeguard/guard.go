// Package routeguard enforces role-based access on every navigable path
// before any handler runs, using only the incoming request cookies. The
// guard is stateless per request: its decision is a pure function of token
// presence, role, and path.
package routeguard

import (
	"net/http"
	"strings"

	backauth "github.com/citymarkets/backoffice-auth"
	"github.com/goliatone/go-router"
)

type Config struct {
	// Filter skips the guard entirely. The default filter excludes API,
	// build-internal, and favicon paths, mirroring the route matcher.
	Filter func(router.Context) bool
	// TokenCookie names the cookie whose presence marks authentication.
	// The guard never validates the token; that is the API's job.
	TokenCookie string
	// RoleCookie names the cookie carrying the role, read case-insensitively.
	RoleCookie string
	// Policy is the shared role→path table. Defaults to backauth.DefaultPolicy.
	Policy *backauth.Policy
	// RoleResolver overrides where the role comes from. The default trusts
	// the plain role cookie as-is, which means a forged role cookie next to
	// a plausible token string bypasses this guard; supply a resolver that
	// derives the role from verified token claims to close that gap.
	RoleResolver func(router.Context) (backauth.UserRole, bool)
	// Redirect issues the computed redirect. Override for custom status codes.
	Redirect func(router.Context, string) error
	Logger   backauth.Logger
}

// Outcome is the guard's decision for a single request.
type Outcome struct {
	Allow      bool
	RedirectTo string
}

func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			path := requestPath(ctx)
			hasToken := ctx.Cookies(cfg.TokenCookie) != ""
			role, _ := cfg.RoleResolver(ctx)

			outcome := Evaluate(cfg.Policy, path, hasToken, role)
			if outcome.Allow {
				return next(ctx)
			}

			cfg.Logger.Debug("route guard redirect %s -> %s role=%s", path, outcome.RedirectTo, role)
			return cfg.Redirect(ctx, outcome.RedirectTo)
		}
	}
}

// Evaluate computes the allow/redirect outcome for (token presence, role,
// path). Rules run in order, first match wins:
//
//  1. public paths are always allowed; an authenticated user landing on the
//     login route is bounced to their role's dashboard instead
//  2. no token, or a token with an unparseable role, redirects to the
//     shared login route
//  3. the merchant role only sees the merchant portal prefix
//  4. every other role is excluded from the merchant portal
//  5. intermediate roles are held to their path-prefix allowlists
//  6. the administrator role falls through unrestricted
//
// The outcome is stable: evaluating any redirect target again always
// allows, so a guarded navigation can never chain redirects.
func Evaluate(policy *backauth.Policy, path string, hasToken bool, role backauth.UserRole) Outcome {
	if policy == nil {
		policy = backauth.DefaultPolicy()
	}

	if policy.IsPublic(path) {
		if hasToken && isLoginPath(path) && role.IsValid() {
			return Outcome{RedirectTo: policy.Landing(role)}
		}
		return Outcome{Allow: true}
	}

	if !hasToken || !role.IsValid() {
		return Outcome{RedirectTo: backauth.LoginRoute}
	}

	if role == backauth.RoleMerchant {
		if backauth.HasPathPrefix(path, backauth.MerchantPortalPrefix) {
			return Outcome{Allow: true}
		}
		return Outcome{RedirectTo: backauth.MerchantLandingRoute}
	}

	if backauth.HasPathPrefix(path, backauth.MerchantPortalPrefix) {
		return Outcome{RedirectTo: backauth.GeneralLandingRoute}
	}

	if policy.Allowed(role, path) {
		return Outcome{Allow: true}
	}

	return Outcome{RedirectTo: policy.Landing(role)}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenCookie == "" {
		cfg.TokenCookie = backauth.CookieTokenKey
	}

	if cfg.RoleCookie == "" {
		cfg.RoleCookie = backauth.CookieRoleKey
	}

	if cfg.Policy == nil {
		cfg.Policy = backauth.DefaultPolicy()
	}

	if cfg.Filter == nil {
		cfg.Filter = DefaultFilter
	}

	if cfg.RoleResolver == nil {
		cfg.RoleResolver = roleFromCookie(cfg.RoleCookie)
	}

	if cfg.Redirect == nil {
		cfg.Redirect = redirectHandler
	}

	if cfg.Logger == nil {
		cfg.Logger = backauth.DefaultLogger()
	}

	return cfg
}

// DefaultFilter skips API, build-internal, and favicon requests.
func DefaultFilter(ctx router.Context) bool {
	path := requestPath(ctx)
	return backauth.HasPathPrefix(path, "/api") ||
		strings.HasPrefix(path, "/_") ||
		path == "/favicon.ico"
}

func roleFromCookie(name string) func(router.Context) (backauth.UserRole, bool) {
	return func(ctx router.Context) (backauth.UserRole, bool) {
		return backauth.ParseRole(ctx.Cookies(name))
	}
}

func redirectHandler(ctx router.Context, target string) error {
	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return ctx.Redirect(target, statusCode)
}

func requestPath(ctx router.Context) string {
	path := ctx.OriginalURL()
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	return path
}

func isLoginPath(path string) bool {
	return backauth.HasPathPrefix(path, backauth.LoginRoute)
}
