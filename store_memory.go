package backauth

import (
	"encoding/json"
	"sync"
	"time"
)

var _ CredentialTier = (*MemoryCredentialTier)(nil)
var _ ProfileTier = (*MemoryProfileTier)(nil)

// MemoryCredentialTier is a process-local credential tier for tests and for
// deployments that keep the session entirely server-side.
type MemoryCredentialTier struct {
	mu    sync.RWMutex
	token string
	role  string
}

func (t *MemoryCredentialTier) SetCredentials(token string, role UserRole) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
	t.role = string(role)
	return nil
}

func (t *MemoryCredentialTier) Credentials() (string, string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token, t.role, nil
}

func (t *MemoryCredentialTier) ClearCredentials() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	t.role = ""
	return nil
}

// MemoryProfileTier is a process-local profile tier. The profile round-trips
// through JSON, mirroring the serialization of the durable implementations.
type MemoryProfileTier struct {
	mu      sync.RWMutex
	profile []byte
	last    time.Time
}

func (t *MemoryProfileTier) SetProfile(user *User) error {
	if user == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.profile = nil
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile = data
	return nil
}

func (t *MemoryProfileTier) Profile() (*User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.profile) == 0 {
		return nil, nil
	}

	user := &User{}
	if err := json.Unmarshal(t.profile, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (t *MemoryProfileTier) SetLastActivity(at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = at
	return nil
}

func (t *MemoryProfileTier) LastActivity() (time.Time, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, nil
}

func (t *MemoryProfileTier) ClearProfile() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profile = nil
	t.last = time.Time{}
	return nil
}
