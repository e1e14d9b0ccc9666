package backauth

import (
	"time"

	"github.com/goliatone/go-router"
)

const (
	// CookieTokenKey is the cookie holding the bearer token.
	CookieTokenKey = "token"
	// CookieRoleKey is the cookie holding the role. Reads are
	// case-insensitive; ParseRole normalizes the stored value.
	CookieRoleKey = "user_role"
	// CookieDuration is the fixed absolute expiry for both credential cookies.
	CookieDuration = 24 * time.Hour
)

var _ CredentialTier = (*RouterCredentialTier)(nil)

// RouterCredentialTier stores the token/role pair as request cookies, the
// only storage tier visible to the edge guard. One instance is scoped to a
// single request context.
type RouterCredentialTier struct {
	ctx router.Context
	now func() time.Time
}

// NewRouterCredentialTier binds a credential tier to a request context.
func NewRouterCredentialTier(ctx router.Context) *RouterCredentialTier {
	return &RouterCredentialTier{
		ctx: ctx,
		now: time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (t *RouterCredentialTier) WithClock(clock func() time.Time) *RouterCredentialTier {
	if clock != nil {
		t.now = clock
	}
	return t
}

func (t *RouterCredentialTier) SetCredentials(token string, role UserRole) error {
	expires := t.now().Add(CookieDuration)
	t.setCookie(CookieTokenKey, token, expires)
	t.setCookie(CookieRoleKey, string(role), expires)
	return nil
}

func (t *RouterCredentialTier) Credentials() (string, string, error) {
	return t.ctx.Cookies(CookieTokenKey), t.ctx.Cookies(CookieRoleKey), nil
}

func (t *RouterCredentialTier) ClearCredentials() error {
	t.delCookie(CookieTokenKey)
	t.delCookie(CookieRoleKey)
	return nil
}

func (t *RouterCredentialTier) setCookie(name, val string, expires time.Time) {
	t.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    val,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (t *RouterCredentialTier) delCookie(name string) {
	t.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  t.now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
