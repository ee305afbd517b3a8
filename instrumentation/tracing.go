package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never log actual sensitive values (session IDs,
// anti-forgery tokens, passwords) in traces or metrics. Only log metadata
// such as outcomes, reasons, and validation results.
//
// These constants define attribute key names for observability, not for
// logging credential values. Logging actual credentials would create
// critical security vulnerabilities as traces are often:
//   - Persisted for extended periods
//   - Accessible to wider audiences than production systems
//   - Replicated across monitoring infrastructure
//   - Subject to compliance requirements (GDPR, PCI-DSS, etc.)
const (
	// Authentication flow attributes - SAFE to use for metadata only
	AttrUserID            = "auth.user_id"                  // User identifier (non-secret)
	AttrLoginResult       = "auth.login.result"             // Login outcome (success, failure, throttled)
	AttrAttemptsRemaining = "auth.login.attempts_remaining" // Failures left before lockout
	AttrLockedUntil       = "auth.login.locked_until"       // Lockout deadline (RFC 3339)
	AttrSessionPresent    = "auth.session_present"          // Whether a session was presented (boolean)
	AttrRevocationReason  = "auth.session.revocation_reason"
	AttrCsrfReason        = "auth.csrf.reason" // Rejection reason (unknown, expired, user_mismatch)

	// RESERVED - DO NOT USE: These are reserved for potential future metadata use only.
	// NEVER set these attributes to actual credential values.
	// Instead, use boolean flags like "session_present" or "token_present".
	AttrSessionID = "auth.session_id" //nolint:gosec // RESERVED - use "session_present" instead
	AttrCsrfToken = "auth.csrf_token" //nolint:gosec // RESERVED - use "token_present" instead

	// Security attributes
	AttrRateLimiterType = "security.rate_limiter.type"
	AttrClientIP        = "security.client_ip"
	AttrAuditEventType  = "security.audit.event_type"

	// HTTP attributes (in addition to standard semantic conventions)
	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanError sets an error status on a span (nil-safe)
// This is a convenience wrapper that safely handles nil spans
func SetSpanError(span trace.Span, message string) {
	if span != nil {
		span.SetStatus(codes.Error, message)
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
// This is a convenience wrapper that safely handles nil spans
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddLoginAttributes adds login flow attributes to a span (nil-safe)
func AddLoginAttributes(span trace.Span, userID, result string) {
	if userID != "" {
		SetSpanAttributes(span, attribute.String(AttrUserID, userID))
	}
	if result != "" {
		SetSpanAttributes(span, attribute.String(AttrLoginResult, result))
	}
}

// AddSessionAttributes adds session validation attributes to a span (nil-safe)
func AddSessionAttributes(span trace.Span, present bool, revocationReason string) {
	SetSpanAttributes(span, attribute.Bool(AttrSessionPresent, present))
	if revocationReason != "" {
		SetSpanAttributes(span, attribute.String(AttrRevocationReason, revocationReason))
	}
}

// AddCsrfAttributes adds anti-forgery validation attributes to a span (nil-safe)
func AddCsrfAttributes(span trace.Span, reason string) {
	if reason != "" {
		SetSpanAttributes(span, attribute.String(AttrCsrfReason, reason))
	}
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}

// AddSecurityAttributes adds security-related attributes to a span (nil-safe)
//
// PRIVACY NOTE: Client IP addresses may be considered Personally Identifiable
// Information (PII). Before calling this function, check if IP logging is
// enabled using instrumentation.ShouldLogClientIPs().
// Example:
//
//	if inst.ShouldLogClientIPs() {
//	    AddSecurityAttributes(span, clientIP)
//	}
func AddSecurityAttributes(span trace.Span, clientIP string) {
	if clientIP != "" {
		SetSpanAttributes(span, attribute.String(AttrClientIP, clientIP))
	}
}
