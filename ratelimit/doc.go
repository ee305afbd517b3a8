// Package ratelimit provides a fixed-window request counter keyed by
// caller-chosen identity, typically client address plus endpoint path.
//
// Each key holds a counter and a window deadline. The first request in a
// window sets the counter to 1 and the deadline to now plus the window;
// requests after the deadline start a fresh window. A request is allowed
// while the counter is within the limit. Rejected requests still increment
// the counter, so the count reflects total pressure during the window and
// retrying early never shortens the wait.
//
// Window length and limit are arguments to CheckAndIncrement rather than
// limiter state, so one Limiter serves endpoints with different budgets.
// Configured bypass prefixes (health checks, static assets) are matched by
// Bypassed; spent counters are reaped by Cleanup or the background sweep.
package ratelimit
