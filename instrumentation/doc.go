// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for
// the authcore library.
//
// This package enables observability across the authentication subsystem
// through:
// - Metrics: counters, histograms, and gauges for login, session, and limiter activity
// - Traces: spans for request flows across components
//
// # Quick Start
//
//	import "github.com/venuehub/authcore/instrumentation"
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "my-auth-service",
//		ServiceVersion: "1.0.0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
// # Available Metrics
//
// HTTP layer:
//   - auth.http.requests.total{method, endpoint, status} - Total HTTP requests
//   - auth.http.request.duration{endpoint} - Request duration in milliseconds
//
// Authentication flow:
//   - auth.login.attempts.total{result} - Login attempts by outcome (success, failure, throttled)
//   - auth.login.lockouts.total - Lockouts triggered by repeated failures
//   - auth.sessions.created.total - Sessions opened
//   - auth.sessions.revoked.total{reason} - Sessions closed (explicit, expired, ip_mismatch, evicted, revoke_all)
//   - auth.csrf.rejections.total{reason} - Anti-forgery token rejections
//
// Security:
//   - auth.rate_limit.exceeded.total{limiter_type} - Rate limit violations
//   - auth.suspicious_requests.total - Sessions revoked for presenting from a new address
//   - auth.audit.events.total{event_type} - Security events recorded
//
// State gauges (observed via RegisterSizeCallbacks):
//   - auth.sessions.active - Sessions currently held
//   - auth.login.tracked_identifiers - Identifiers with failure history
//   - auth.csrf.outstanding_tokens - Unspent anti-forgery tokens
//   - auth.rate_limit.active_counters - Live rate limit windows
//
// # Performance
//
// When instrumentation is not configured or disabled:
//   - Zero overhead (uses no-op providers)
//   - No allocations or latency impact
//
// # Thread Safety
//
// All instrumentation operations are thread-safe and can be called
// concurrently from multiple goroutines.
//
// # Metric Cardinality Considerations
//
// Label sets here are deliberately small: result, reason, and limiter_type
// are fixed enumerations, and endpoint is the handler path, not the raw
// request URI. User identifiers never appear as metric labels; per-user
// investigation belongs in the security event trail, not in metrics.
//
// # Security Considerations
//
// This package collects observability data, not credentials.
//
// When instrumenting authentication flows, you MUST:
//   - NEVER record session IDs or anti-forgery tokens in spans or metrics
//   - NEVER record passwords or password material
//   - ONLY record metadata (outcomes, reasons, counts, durations)
//
// Client IP addresses may be considered PII in some jurisdictions; span
// helpers that attach them are gated behind ShouldLogClientIPs.
package instrumentation
