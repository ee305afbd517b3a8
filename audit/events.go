package audit

// Event type constants for security event recording.
// These constants ensure consistency across the codebase and prevent typos
// when recording security-relevant events.
const (
	// Authentication events

	// EventAuthFailure is recorded when authentication fails, including the
	// attempt that trips an account lockout.
	EventAuthFailure = "auth_failure"

	// EventAuthSuccess is recorded when a login succeeds and a session is
	// established.
	EventAuthSuccess = "auth_success"

	// Session lifecycle events

	// EventSessionCreated is recorded when a new session is established.
	EventSessionCreated = "session_created"

	// EventSessionRevoked is recorded when a session is explicitly revoked
	// (logout, logout-everywhere, administrative action).
	EventSessionRevoked = "session_revoked"

	// EventSessionExpired is recorded when a session is removed after
	// exceeding the inactivity timeout.
	EventSessionExpired = "session_expired"

	// EventSessionEvicted is recorded when the per-user session cap forces
	// the oldest session out.
	EventSessionEvicted = "session_evicted"

	// Security violation events

	// EventSuspiciousRequest is recorded when a session is presented from a
	// different IP address than the one it was created with.
	EventSuspiciousRequest = "suspicious_request"

	// EventRateLimitExceeded is recorded when a request counter exceeds its
	// window limit.
	EventRateLimitExceeded = "rate_limit_exceeded"

	// EventCsrfRejected is recorded when a CSRF token fails validation
	// (unknown, expired, or already consumed).
	EventCsrfRejected = "csrf_rejected"

	// EventCsrfUserMismatch is recorded when a CSRF token is presented by a
	// different user than it was issued to. The token itself survives the
	// attempt so its legitimate owner can still spend it.
	EventCsrfUserMismatch = "csrf_user_mismatch"
)
