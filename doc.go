// Package backauth implements the authorization and session-lifecycle layer
// of the municipal-markets payments back-office: a role-based route guard, a
// two-tier session store, and a session manager enforcing a sliding
// inactivity timeout.
//
// Session lifecycle:
//   - SessionStore composes a credential tier (bearer token + role, cookie
//     semantics, fixed 24h expiry) with a profile tier (user profile +
//     last-activity timestamp). Writes swallow storage failures; a session
//     that could not be persisted simply fails to restore later.
//   - SessionManager owns the in-memory user/loading view, restores the
//     persisted session on start (evicting sessions that went stale while
//     the client was closed), and runs the inactivity watchdog. Activity
//     signals refresh the sliding window through SessionStore.Touch.
//
// Route guard:
//   - middleware/routeguard evaluates a static role→path-prefix policy on
//     every request before any handler runs, using only the incoming
//     cookies. The policy table lives here (Policy) so the guard and any
//     link-visibility logic share one source of truth.
//
// The apiclient package wraps outbound REST calls, attaching the bearer
// token and centralizing 401/403/404 routing.
package backauth
