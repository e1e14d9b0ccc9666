package backauth

import (
	"fmt"
	"time"
)

// Session holds the persisted authenticated identity: bearer token, role,
// user profile, and the last observed interaction time. It is the read view
// of the two storage tiers; missing fields stay zero.
type Session struct {
	Token        string    `json:"token,omitempty"`
	Role         UserRole  `json:"role,omitempty"`
	User         *User     `json:"user,omitempty"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// HasCredentials reports whether token and role survived together. The
// credential tier writes them as a pair; a partial pair reads as absent.
func (s Session) HasCredentials() bool {
	return s.Token != "" && s.Role != ""
}

// HasProfile reports whether a profile record survived.
func (s Session) HasProfile() bool {
	return s.User != nil
}

// ExpiredAfter reports whether the session sat idle longer than timeout at
// the given instant. A session without a recorded timestamp never reads as
// expired; the watchdog repairs the timestamp instead.
func (s Session) ExpiredAfter(timeout time.Duration, now time.Time) bool {
	if s.LastActivity.IsZero() {
		return false
	}
	return now.Sub(s.LastActivity) > timeout
}

func (s Session) String() string {
	userID := "<nil>"
	if s.User != nil {
		userID = s.User.ID.String()
	}
	lastActivity := "<unset>"
	if !s.LastActivity.IsZero() {
		lastActivity = s.LastActivity.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s role=%s token_present=%t last_activity=%s",
		userID,
		s.Role,
		s.Token != "",
		lastActivity,
	)
}
