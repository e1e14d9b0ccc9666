package backauth

import (
	"context"
	"time"
)

// Signal identifies a tracked user-interaction event. Each observed signal
// refreshes the sliding inactivity window.
type Signal string

const (
	SignalPointerMove Signal = "pointermove"
	SignalKeyPress    Signal = "keypress"
	SignalClick       Signal = "click"
	SignalScroll      Signal = "scroll"
	SignalTouchStart  Signal = "touchstart"
)

// Tracked reports whether the signal belongs to the fixed interaction set.
func (s Signal) Tracked() bool {
	switch s {
	case SignalPointerMove, SignalKeyPress, SignalClick, SignalScroll, SignalTouchStart:
		return true
	default:
		return false
	}
}

// TrackedSignals returns the fixed set of interaction signals.
func TrackedSignals() []Signal {
	return []Signal{
		SignalPointerMove,
		SignalKeyPress,
		SignalClick,
		SignalScroll,
		SignalTouchStart,
	}
}

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventLogout          ActivityEventType = "auth.logout"
	ActivityEventSessionExpired  ActivityEventType = "auth.session.expired"
	ActivityEventSessionRestored ActivityEventType = "auth.session.restored"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Role       UserRole
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
