package backauth

import (
	"context"
)

// Authenticator performs the credential exchange that produces the opaque
// bearer token the rest of the session layer carries around.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, *User, error)
	SessionFromToken(token string) (AuthClaims, error)
}

var _ Authenticator = (*Auther)(nil)

type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (a *Auther) WithActivitySink(sink ActivitySink) *Auther {
	a.activitySink = normalizeActivitySink(sink)
	return a
}

// WithTokenService overrides the token service used to mint bearer tokens.
func (a *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		a.tokenService = tokens
	}
	return a
}

// TokenService returns the TokenService instance used by this Authenticator
func (a *Auther) TokenService() TokenService {
	return a.tokenService
}

// Login verifies the credentials and mints a bearer token. The returned
// user carries the normalized role spelling so downstream cookie writes and
// policy checks see a single canonical value.
func (a *Auther) Login(ctx context.Context, identifier, password string) (string, *User, error) {
	user, err := a.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		a.logger.Error("Login verify identity error", "error", err)
		a.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	if user == nil {
		a.logger.Error("Login identity is nil")
		a.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return "", nil, ErrIdentityNotFound
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		a.logger.Warn("Login blocked due to user status", "status", user.Status)
		a.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"identifier": identifier,
			"status":     user.Status,
		})
		return "", nil, err
	}

	role, ok := ParseRole(user.Role)
	if !ok {
		a.logger.Error("Login identity carries unknown role", "role", user.Role)
		a.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"identifier": identifier,
			"role":       user.Role,
		})
		return "", nil, ErrRoleNotAllowed
	}
	user.Role = string(role)

	token, err := a.tokenService.Generate(user)
	if err != nil {
		a.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", nil, err
	}

	a.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), map[string]any{
		"identifier": identifier,
	})

	return token, user, nil
}

// SessionFromToken validates a raw bearer token into claims.
func (a *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	claims, err := a.tokenService.Validate(raw)
	if err != nil {
		a.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

func (a *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(a.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		a.logger.Warn("activity sink record error: %v", err)
	}
}
