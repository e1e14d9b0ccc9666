package backauth

import "time"

// CredentialTier persists the bearer token and role as a pair. The cookie
// implementation is the only storage the edge guard can see, so this tier
// holds exactly what the guard needs and nothing more.
type CredentialTier interface {
	SetCredentials(token string, role UserRole) error
	// Credentials returns the raw stored values; the store normalizes the
	// role and drops partial pairs.
	Credentials() (token, role string, err error)
	ClearCredentials() error
}

// ProfileTier persists the user profile and the last-activity timestamp.
type ProfileTier interface {
	SetProfile(user *User) error
	Profile() (*User, error)
	SetLastActivity(at time.Time) error
	// LastActivity returns the zero time when no timestamp was recorded.
	LastActivity() (time.Time, error)
	ClearProfile() error
}

// SessionStore composes the two storage tiers into the durable session.
// Writes swallow tier failures: quota or I/O errors surface only as an
// inability to restore the session later.
// Reads never fail; whatever survives comes back, the rest stays zero.
type SessionStore struct {
	creds   CredentialTier
	profile ProfileTier
	now     func() time.Time
	logger  Logger
}

// StoreOption customizes SessionStore construction.
type StoreOption func(*SessionStore)

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *SessionStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithStoreLogger overrides the logger used for swallowed tier failures.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSessionStore composes a credential tier and a profile tier.
func NewSessionStore(creds CredentialTier, profile ProfileTier, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		creds:   creds,
		profile: profile,
		now:     time.Now,
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Set persists a full session across both tiers and stamps the current time
// as last activity. Tier failures are logged and swallowed.
func (s *SessionStore) Set(token string, role UserRole, user *User) {
	if err := s.creds.SetCredentials(token, role); err != nil {
		s.logger.Warn("session store credential write failed: %v", err)
	}
	if err := s.profile.SetProfile(user); err != nil {
		s.logger.Warn("session store profile write failed: %v", err)
	}
	if err := s.profile.SetLastActivity(s.now()); err != nil {
		s.logger.Warn("session store activity write failed: %v", err)
	}
}

// Read returns whatever survives in storage. A token without a role (or the
// reverse) reads as no credentials at all; a role is normalized through
// ParseRole so legacy spellings and casings behave identically.
func (s *SessionStore) Read() Session {
	out := Session{}

	token, rawRole, err := s.creds.Credentials()
	if err != nil {
		s.logger.Debug("session store credential read failed: %v", err)
	} else if token != "" {
		if role, ok := ParseRole(rawRole); ok {
			out.Token = token
			out.Role = role
		}
	}

	user, err := s.profile.Profile()
	if err != nil {
		s.logger.Debug("session store profile read failed: %v", err)
	} else {
		out.User = user
	}

	last, err := s.profile.LastActivity()
	if err != nil {
		s.logger.Debug("session store activity read failed: %v", err)
	} else {
		out.LastActivity = last
	}

	return out
}

// Clear removes all persisted fields from both tiers. Safe to call when
// nothing is stored.
func (s *SessionStore) Clear() {
	if err := s.creds.ClearCredentials(); err != nil {
		s.logger.Warn("session store credential clear failed: %v", err)
	}
	if err := s.profile.ClearProfile(); err != nil {
		s.logger.Warn("session store profile clear failed: %v", err)
	}
}

// Touch refreshes only the last-activity timestamp. It runs on every
// tracked interaction event, so it must stay a single cheap write.
func (s *SessionStore) Touch() {
	if err := s.profile.SetLastActivity(s.now()); err != nil {
		s.logger.Debug("session store touch failed: %v", err)
	}
}
