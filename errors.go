package authcore

import (
	"fmt"
	"net/http"
	"time"
)

// Security error codes as constants
const (
	ErrorCodeAuthThrottled      = "auth_throttled"
	ErrorCodeSessionInvalid     = "session_invalid"
	ErrorCodeCsrfInvalid        = "csrf_invalid"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeServerError        = "server_error"
)

// SecurityError represents a rejected request on the authentication path.
// All SecurityError values are expected, recoverable outcomes of routine
// security checks; none indicates an internal failure.
type SecurityError struct {
	Code       string        // Stable error code (e.g., "auth_throttled", "rate_limited")
	Message    string        // Human-readable error description
	Status     int           // HTTP status code
	RetryAfter time.Duration // Optional hint for the Retry-After header (0 = none)
}

// Error implements the error interface
func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithRetryAfter attaches a retry hint, surfaced to HTTP clients as the
// Retry-After header and the retryAfter field of the JSON error body.
func (e *SecurityError) WithRetryAfter(d time.Duration) *SecurityError {
	e.RetryAfter = d
	return e
}

// RetryAfterSeconds returns the retry hint in whole seconds, rounded up.
// Returns 0 when no hint is set.
func (e *SecurityError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// NewSecurityError creates a new security error
func NewSecurityError(code, message string, status int) *SecurityError {
	return &SecurityError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Common security errors as reusable factories
var (
	// ErrAuthThrottled indicates the identifier is locked out after repeated
	// failed logins; the credential verifier must not be consulted
	ErrAuthThrottled = func(desc string) *SecurityError {
		return NewSecurityError(ErrorCodeAuthThrottled, desc, http.StatusTooManyRequests)
	}

	// ErrSessionInvalid indicates the session is missing, expired, revoked, or
	// failed the IP-pinning check; the caller must require re-authentication
	ErrSessionInvalid = func(desc string) *SecurityError {
		return NewSecurityError(ErrorCodeSessionInvalid, desc, http.StatusUnauthorized)
	}

	// ErrCsrfInvalid indicates the CSRF token is unknown, expired, already
	// consumed, or bound to a different user
	ErrCsrfInvalid = func(desc string) *SecurityError {
		return NewSecurityError(ErrorCodeCsrfInvalid, desc, http.StatusForbidden)
	}

	// ErrRateLimited indicates the request counter exceeded the window limit
	ErrRateLimited = func(desc string) *SecurityError {
		return NewSecurityError(ErrorCodeRateLimited, desc, http.StatusTooManyRequests)
	}

	// ErrInvalidCredentials indicates credential verification failed
	ErrInvalidCredentials = func(desc string) *SecurityError {
		return NewSecurityError(ErrorCodeInvalidCredentials, desc, http.StatusUnauthorized)
	}
)
