package backauth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	backauth "github.com/citymarkets/backoffice-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type recordingSink struct {
	mu     sync.Mutex
	events []backauth.ActivityEvent
}

func (s *recordingSink) Record(ctx context.Context, event backauth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Types() []backauth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backauth.ActivityEventType, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.EventType)
	}
	return out
}

func newTestUser(role backauth.UserRole) *backauth.User {
	return &backauth.User{
		ID:        uuid.New(),
		Role:      string(role),
		FirstName: "Test",
		LastName:  "User",
		Email:     "user@example.com",
	}
}

func TestManagerRestoreWithEmptyStorage(t *testing.T) {
	nav := &recordingNavigator{}
	store := newMemoryStore(time.Now)

	manager := backauth.NewSessionManager(store, backauth.WithNavigator(nav))
	assert.Equal(t, backauth.StateInitializing, manager.State())
	assert.True(t, manager.IsLoading())

	manager.Restore(context.Background(), backauth.GeneralLandingRoute)

	assert.Equal(t, backauth.StateUnauthenticated, manager.State())
	assert.False(t, manager.IsLoading())
	assert.Nil(t, manager.User())
	// No navigation: the route guard owns where a signed-out user goes.
	assert.Empty(t, nav.Paths())
}

func TestManagerRestoreFreshSession(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	nav := &recordingNavigator{}
	sink := &recordingSink{}
	store := newMemoryStore(clock)

	user := newTestUser(backauth.RoleSupervisor)
	store.Set("token-123", backauth.RoleSupervisor, user)

	// Reopen two minutes later, still inside the idle window.
	now = now.Add(2 * time.Minute)

	manager := backauth.NewSessionManager(store,
		backauth.WithNavigator(nav),
		backauth.WithManagerClock(clock),
		backauth.WithManagerActivitySink(sink),
	)
	manager.Restore(context.Background(), backauth.GeneralLandingRoute)

	assert.Equal(t, backauth.StateAuthenticated, manager.State())
	require.NotNil(t, manager.User())
	assert.Equal(t, user.ID, manager.User().ID)
	assert.Empty(t, nav.Paths())
	assert.Equal(t, []backauth.ActivityEventType{backauth.ActivityEventSessionRestored}, sink.Types())

	// The restore refreshed the window.
	assert.Equal(t, now, store.Read().LastActivity)
}

func TestManagerRestoreEvictsStaleSession(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	nav := &recordingNavigator{}
	sink := &recordingSink{}
	store := newMemoryStore(clock)

	store.Set("token-123", backauth.RoleStaff, newTestUser(backauth.RoleStaff))

	// Reopen well past the idle window.
	now = now.Add(20 * time.Minute)

	manager := backauth.NewSessionManager(store,
		backauth.WithNavigator(nav),
		backauth.WithManagerClock(clock),
		backauth.WithManagerActivitySink(sink),
	)
	manager.Restore(context.Background(), backauth.GeneralLandingRoute)

	assert.Equal(t, backauth.StateUnauthenticated, manager.State())
	assert.Nil(t, manager.User())
	assert.False(t, store.Read().HasCredentials())
	assert.Equal(t, []string{backauth.LoginRoute}, nav.Paths())
	assert.Equal(t, []backauth.ActivityEventType{backauth.ActivityEventSessionExpired}, sink.Types())
}

func TestManagerRestoreStaleOnLoginPathDoesNotNavigate(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	nav := &recordingNavigator{}
	store := newMemoryStore(clock)
	store.Set("token-123", backauth.RoleStaff, newTestUser(backauth.RoleStaff))

	now = now.Add(20 * time.Minute)

	manager := backauth.NewSessionManager(store,
		backauth.WithNavigator(nav),
		backauth.WithManagerClock(clock),
	)
	manager.Restore(context.Background(), backauth.LoginRoute)

	assert.Equal(t, backauth.StateUnauthenticated, manager.State())
	assert.Empty(t, nav.Paths())
}

func TestManagerLoginLandsPerRole(t *testing.T) {
	tests := []struct {
		name    string
		role    backauth.UserRole
		landing string
	}{
		{"administrator", backauth.RoleAdministrator, backauth.GeneralLandingRoute},
		{"supervisor", backauth.RoleSupervisor, backauth.GeneralLandingRoute},
		{"merchant", backauth.RoleMerchant, backauth.MerchantLandingRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &recordingNavigator{}
			store := newMemoryStore(time.Now)
			manager := backauth.NewSessionManager(store, backauth.WithNavigator(nav))

			user := newTestUser(tt.role)
			err := manager.Login(context.Background(), "token-123", user)

			require.NoError(t, err)
			assert.Equal(t, backauth.StateAuthenticated, manager.State())
			assert.Equal(t, []string{tt.landing}, nav.Paths())
			assert.True(t, store.Read().HasCredentials())
		})
	}
}

func TestManagerLoginNormalizesLegacyRole(t *testing.T) {
	nav := &recordingNavigator{}
	store := newMemoryStore(time.Now)
	manager := backauth.NewSessionManager(store, backauth.WithNavigator(nav))

	user := newTestUser(backauth.RoleMerchant)
	user.Role = "commercant"

	require.NoError(t, manager.Login(context.Background(), "token-123", user))

	assert.Equal(t, backauth.RoleMerchant, store.Read().Role)
	assert.Equal(t, []string{backauth.MerchantLandingRoute}, nav.Paths())
}

func TestManagerLoginRejectsBadInput(t *testing.T) {
	store := newMemoryStore(time.Now)
	manager := backauth.NewSessionManager(store)

	assert.Error(t, manager.Login(context.Background(), "", newTestUser(backauth.RoleStaff)))
	assert.Error(t, manager.Login(context.Background(), "token-123", nil))

	badRole := newTestUser(backauth.RoleStaff)
	badRole.Role = "SUPERUSER"
	assert.Error(t, manager.Login(context.Background(), "token-123", badRole))

	assert.NotEqual(t, backauth.StateAuthenticated, manager.State())
	assert.False(t, store.Read().HasCredentials())
}

func TestManagerLogout(t *testing.T) {
	nav := &recordingNavigator{}
	sink := &recordingSink{}
	store := newMemoryStore(time.Now)
	manager := backauth.NewSessionManager(store,
		backauth.WithNavigator(nav),
		backauth.WithManagerActivitySink(sink),
	)

	require.NoError(t, manager.Login(context.Background(), "token-123", newTestUser(backauth.RoleMerchant)))
	manager.Logout(context.Background())

	assert.Equal(t, backauth.StateUnauthenticated, manager.State())
	assert.Nil(t, manager.User())
	assert.False(t, store.Read().HasCredentials())
	assert.False(t, store.Read().HasProfile())

	// Every role returns to the shared login route.
	assert.Equal(t, []string{backauth.MerchantLandingRoute, backauth.LoginRoute}, nav.Paths())
	assert.Equal(t, []backauth.ActivityEventType{
		backauth.ActivityEventLoginSuccess,
		backauth.ActivityEventLogout,
	}, sink.Types())
}

func TestManagerObserveRefreshesWindow(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := newMemoryStore(clock)
	manager := backauth.NewSessionManager(store, backauth.WithManagerClock(clock))

	require.NoError(t, manager.Login(context.Background(), "token-123", newTestUser(backauth.RoleStaff)))

	now = now.Add(time.Minute)
	manager.Observe(backauth.SignalKeyPress)
	assert.Equal(t, now, store.Read().LastActivity)

	// Untracked signals never touch storage.
	now = now.Add(time.Minute)
	manager.Observe(backauth.Signal("resize"))
	assert.Equal(t, now.Add(-time.Minute), store.Read().LastActivity)
}

func TestManagerObserveIgnoredWhenSignedOut(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := newMemoryStore(clock)
	manager := backauth.NewSessionManager(store, backauth.WithManagerClock(clock))
	manager.Restore(context.Background(), backauth.GeneralLandingRoute)

	manager.Observe(backauth.SignalClick)
	assert.True(t, store.Read().LastActivity.IsZero())
}

func TestManagerStartAndCloseAreIdempotent(t *testing.T) {
	store := newMemoryStore(time.Now)
	manager := backauth.NewSessionManager(store,
		backauth.WithWatchdogInterval(time.Millisecond),
	)

	ctx := context.Background()
	manager.Start(ctx)
	manager.Start(ctx)
	manager.Close()
	manager.Close()
}
