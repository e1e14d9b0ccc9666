package backauth

import "context"

var managerCtxKey = &contextKey{"session-manager"}
var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithManager sets the SessionManager in the given context
func WithManager(ctx context.Context, m *SessionManager) context.Context {
	return context.WithValue(ctx, managerCtxKey, m)
}

// ManagerFromContext finds the session manager from the context.
func ManagerFromContext(ctx context.Context) (*SessionManager, bool) {
	raw, ok := ctx.Value(managerCtxKey).(*SessionManager)
	return raw, ok
}

// MustManager returns the session manager or panics. Calling it outside an
// active manager scope is a programming error, not a runtime condition, so
// it fails fast instead of returning an error.
func MustManager(ctx context.Context) *SessionManager {
	m, ok := ManagerFromContext(ctx)
	if !ok {
		panic("backauth: MustManager called outside a session manager scope")
	}
	return m
}

// WithUser sets the User in the given context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}
