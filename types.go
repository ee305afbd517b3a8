package authcore

import (
	"time"

	"github.com/venuehub/authcore/session"
)

// ErrorResponse is the JSON body written for rejected requests
type ErrorResponse struct {
	// Error is the stable error code (e.g., "rate_limited")
	Error string `json:"error"`

	// Message is a human-readable description
	Message string `json:"message"`

	// RetryAfter is the suggested wait in seconds before retrying.
	// Present on throttled and rate-limited responses.
	RetryAfter int `json:"retryAfter,omitempty"`
}

// LoginRequest carries one login attempt through the service
type LoginRequest struct {
	// Identifier names the account (typically an email address). It is
	// also the throttling key and becomes the session's user ID.
	Identifier string

	// Password is the cleartext credential to verify.
	Password string

	// IP is the client address. The created session is pinned to it and
	// any later validation from a different address revokes the session.
	IP string

	// UserAgent is the client's User-Agent header, kept for audit trails.
	UserAgent string
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	// Session is a snapshot of the created session. Its ID is the bearer
	// credential handed to the client.
	Session *session.Session

	// CsrfToken is a fresh single-use token for the session's first
	// state-mutating request.
	CsrfToken string
}

// SessionInfo is the JSON shape for listing a user's active sessions
type SessionInfo struct {
	ID             string    `json:"id"`
	IP             string    `json:"ip"`
	UserAgent      string    `json:"userAgent"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	Current        bool      `json:"current"`
}

// NewSessionInfo converts a session snapshot for the HTTP surface.
// currentID marks the session the request itself was authenticated with.
func NewSessionInfo(s *session.Session, currentID string) SessionInfo {
	return SessionInfo{
		ID:             s.ID,
		IP:             s.IP,
		UserAgent:      s.UserAgent,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		Current:        s.ID == currentID,
	}
}
