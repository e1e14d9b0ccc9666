package backauth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ManagerState tracks where the session manager sits in its lifecycle.
// Unauthenticated is terminal for a given session; a fresh Login produces a
// new Authenticated run of the same manager.
type ManagerState string

const (
	StateInitializing    ManagerState = "initializing"
	StateAuthenticated   ManagerState = "authenticated"
	StateUnauthenticated ManagerState = "unauthenticated"
)

const (
	// InactivityTimeout is the sliding idle window after which a session ends.
	InactivityTimeout = 5 * time.Minute
	// WatchdogInterval is how often the watchdog samples the stored timestamp.
	WatchdogInterval = 10 * time.Second
)

// SessionManager is the process-wide source of truth for "who is logged
// in". It owns the in-memory user/loading view, restores the persisted
// session on start, and enforces the sliding inactivity timeout.
//
// The watchdog and the signal handlers write the stored timestamp without a
// lock. Every writer stores the current clock value and every reader only
// does a threshold comparison, so last-write-wins is safe here.
type SessionManager struct {
	store  *SessionStore
	nav    Navigator
	policy *Policy
	sink   ActivitySink
	logger Logger
	now    func() time.Time

	timeout  time.Duration
	interval time.Duration

	mu      sync.RWMutex
	state   ManagerState
	user    *User
	loading bool

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// ManagerOption customizes SessionManager construction.
type ManagerOption func(*SessionManager)

// WithNavigator sets the navigation sink for redirects.
func WithNavigator(nav Navigator) ManagerOption {
	return func(m *SessionManager) {
		if nav != nil {
			m.nav = nav
		}
	}
}

// WithPolicy overrides the role policy table used for landing routes.
func WithPolicy(policy *Policy) ManagerOption {
	return func(m *SessionManager) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithManagerLogger overrides the default logger.
func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerClock injects a custom clock (useful for tests).
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithManagerActivitySink configures an ActivitySink for session events.
func WithManagerActivitySink(sink ActivitySink) ManagerOption {
	return func(m *SessionManager) {
		m.sink = normalizeActivitySink(sink)
	}
}

// WithInactivityTimeout overrides the 5-minute idle window.
func WithInactivityTimeout(d time.Duration) ManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithWatchdogInterval overrides the 10-second watchdog sampling interval.
func WithWatchdogInterval(d time.Duration) ManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// NewSessionManager returns a manager in the Initializing state. Call
// Restore to replay any persisted session, then Start to run the watchdog.
func NewSessionManager(store *SessionStore, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		store:    store,
		nav:      NavigatorFunc(nil),
		policy:   DefaultPolicy(),
		sink:     noopActivitySink{},
		logger:   defLogger{},
		now:      time.Now,
		timeout:  InactivityTimeout,
		interval: WatchdogInterval,
		state:    StateInitializing,
		loading:  true,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// User returns the authenticated profile, nil when unauthenticated.
func (m *SessionManager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// IsLoading reports whether the manager is still initializing.
func (m *SessionManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// State returns the current lifecycle state.
func (m *SessionManager) State() ManagerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Restore replays the persisted session. A session whose timestamp went
// stale while the client was closed is evicted: storage is cleared and the
// user is sent to login unless currentPath already is the login route. A
// fresh session transitions straight to Authenticated and refreshes its
// timestamp. With nothing usable persisted the manager goes Unauthenticated
// without navigating; the route guard decides where the user ends up.
func (m *SessionManager) Restore(ctx context.Context, currentPath string) {
	session := m.store.Read()
	now := m.now()

	if session.ExpiredAfter(m.timeout, now) {
		m.store.Clear()
		m.setState(StateUnauthenticated, nil)
		m.record(ctx, ActivityEvent{
			EventType: ActivityEventSessionExpired,
			Role:      session.Role,
			Metadata: map[string]any{
				"expired_while_closed": true,
			},
		})
		if currentPath != LoginRoute {
			m.nav.Navigate(LoginRoute)
		}
		return
	}

	if session.HasCredentials() && session.HasProfile() {
		m.store.Touch()
		m.setState(StateAuthenticated, session.User)
		m.record(ctx, ActivityEvent{
			EventType: ActivityEventSessionRestored,
			UserID:    session.User.ID.String(),
			Role:      session.Role,
		})
		return
	}

	m.setState(StateUnauthenticated, nil)
}

// Start launches the inactivity watchdog. Subsequent calls are no-ops;
// Close tears the watchdog down.
func (m *SessionManager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.watchdog(ctx)
	})
}

// Close stops the watchdog and waits for it to exit. The manager must not
// leak timers across logins; callers pair every Start with a Close.
func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}

// Login persists the exchanged credentials, refreshes the activity window,
// and lands the user on their role's dashboard.
func (m *SessionManager) Login(ctx context.Context, token string, user *User) error {
	if token == "" || user == nil {
		return goerrors.New("login requires a token and a user profile", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	role, ok := ParseRole(user.Role)
	if !ok {
		return goerrors.New("login with unknown role", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"role": user.Role})
	}

	m.store.Set(token, role, user)
	m.setState(StateAuthenticated, user)
	m.record(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    user.ID.String(),
		Role:      role,
	})

	m.nav.Navigate(m.policy.Landing(role))
	return nil
}

// Logout clears both storage tiers and always returns to the shared login
// route, regardless of the role that was active.
func (m *SessionManager) Logout(ctx context.Context) {
	user := m.User()

	m.store.Clear()
	m.setState(StateUnauthenticated, nil)

	event := ActivityEvent{EventType: ActivityEventLogout}
	if user != nil {
		event.UserID = user.ID.String()
		event.Role = user.UserRole()
	}
	m.record(ctx, event)

	m.nav.Navigate(LoginRoute)
}

// Observe reports a user-interaction signal. Each tracked signal refreshes
// the sliding window with a single timestamp write; untracked signals and
// signals outside an authenticated session are ignored.
func (m *SessionManager) Observe(sig Signal) {
	if !sig.Tracked() {
		return
	}
	if m.State() != StateAuthenticated {
		return
	}
	m.store.Touch()
}

func (m *SessionManager) watchdog(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.watchdogTick(ctx)
		}
	}
}

// watchdogTick compares now against the persisted timestamp and forces a
// logout once the idle gap exceeds the timeout. A missing timestamp is
// repaired rather than punished.
func (m *SessionManager) watchdogTick(ctx context.Context) {
	if m.State() != StateAuthenticated {
		return
	}

	session := m.store.Read()
	if session.LastActivity.IsZero() {
		m.store.Touch()
		return
	}

	if m.now().Sub(session.LastActivity) > m.timeout {
		m.logger.Info("session expired after %s idle", m.now().Sub(session.LastActivity))
		m.record(ctx, ActivityEvent{
			EventType: ActivityEventSessionExpired,
			UserID:    userID(session.User),
			Role:      session.Role,
		})
		m.Logout(ctx)
	}
}

func (m *SessionManager) setState(state ManagerState, user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
	m.loading = false
}

func (m *SessionManager) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	sink := normalizeActivitySink(m.sink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error: %v", err)
	}
}

func userID(user *User) string {
	if user == nil {
		return ""
	}
	return user.ID.String()
}
