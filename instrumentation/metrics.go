package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the authentication subsystem
type Metrics struct {
	// HTTP Layer Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Authentication Flow Metrics
	LoginAttempts     metric.Int64Counter
	LockoutsTriggered metric.Int64Counter
	SessionsCreated   metric.Int64Counter
	SessionsRevoked   metric.Int64Counter
	CsrfRejections    metric.Int64Counter

	// Security Metrics
	RateLimitExceeded  metric.Int64Counter
	SuspiciousRequests metric.Int64Counter

	// Audit Metrics
	AuditEventsTotal metric.Int64Counter

	// State Gauges (observed via RegisterSizeCallbacks)
	ActiveSessions     metric.Int64ObservableGauge
	TrackedIdentifiers metric.Int64ObservableGauge
	OutstandingTokens  metric.Int64ObservableGauge
	RateLimitCounters  metric.Int64ObservableGauge
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}

	httpMeter := inst.Meter("http")
	authMeter := inst.Meter("auth")
	securityMeter := inst.Meter("security")
	stateMeter := inst.Meter("state")

	// HTTP Layer Metrics
	var err error
	m.HTTPRequestsTotal, err = httpMeter.Int64Counter(
		"auth.http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.requests.total counter: %w", err)
	}

	m.HTTPRequestDuration, err = httpMeter.Float64Histogram(
		"auth.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.request.duration histogram: %w", err)
	}

	// Authentication Flow Metrics
	m.LoginAttempts, err = authMeter.Int64Counter(
		"auth.login.attempts.total",
		metric.WithDescription("Number of login attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login.attempts.total counter: %w", err)
	}

	m.LockoutsTriggered, err = authMeter.Int64Counter(
		"auth.login.lockouts.total",
		metric.WithDescription("Number of lockouts triggered by repeated login failures"),
		metric.WithUnit("{lockout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login.lockouts.total counter: %w", err)
	}

	m.SessionsCreated, err = authMeter.Int64Counter(
		"auth.sessions.created.total",
		metric.WithDescription("Number of sessions opened"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions.created.total counter: %w", err)
	}

	m.SessionsRevoked, err = authMeter.Int64Counter(
		"auth.sessions.revoked.total",
		metric.WithDescription("Number of sessions closed by reason"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions.revoked.total counter: %w", err)
	}

	m.CsrfRejections, err = authMeter.Int64Counter(
		"auth.csrf.rejections.total",
		metric.WithDescription("Number of anti-forgery token rejections by reason"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create csrf.rejections.total counter: %w", err)
	}

	// Security Metrics
	m.RateLimitExceeded, err = securityMeter.Int64Counter(
		"auth.rate_limit.exceeded.total",
		metric.WithDescription("Number of rate limit violations"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate_limit.exceeded.total counter: %w", err)
	}

	m.SuspiciousRequests, err = securityMeter.Int64Counter(
		"auth.suspicious_requests.total",
		metric.WithDescription("Number of sessions revoked for presenting from a new address"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create suspicious_requests.total counter: %w", err)
	}

	// Audit Metrics
	m.AuditEventsTotal, err = securityMeter.Int64Counter(
		"auth.audit.events.total",
		metric.WithDescription("Total number of security events recorded"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events.total counter: %w", err)
	}

	// State Gauges
	m.ActiveSessions, err = stateMeter.Int64ObservableGauge(
		"auth.sessions.active",
		metric.WithDescription("Sessions currently held, including expired ones not yet swept"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions.active gauge: %w", err)
	}

	m.TrackedIdentifiers, err = stateMeter.Int64ObservableGauge(
		"auth.login.tracked_identifiers",
		metric.WithDescription("Identifiers with live login failure history"),
		metric.WithUnit("{identifier}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login.tracked_identifiers gauge: %w", err)
	}

	m.OutstandingTokens, err = stateMeter.Int64ObservableGauge(
		"auth.csrf.outstanding_tokens",
		metric.WithDescription("Unspent anti-forgery tokens"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create csrf.outstanding_tokens gauge: %w", err)
	}

	m.RateLimitCounters, err = stateMeter.Int64ObservableGauge(
		"auth.rate_limit.active_counters",
		metric.WithDescription("Live rate limit windows"),
		metric.WithUnit("{counter}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate_limit.active_counters gauge: %w", err)
	}

	return m, nil
}

// Helper methods for common metric recording patterns

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, endpoint string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
		attribute.Int("status", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, durationMs, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordLoginAttempt records a login attempt outcome.
// result is one of "success", "failure", "throttled".
func (m *Metrics) RecordLoginAttempt(ctx context.Context, result string) {
	m.LoginAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// RecordLockout records a lockout triggered by repeated failures
func (m *Metrics) RecordLockout(ctx context.Context) {
	m.LockoutsTriggered.Add(ctx, 1)
}

// RecordSessionCreated records a session being opened
func (m *Metrics) RecordSessionCreated(ctx context.Context) {
	m.SessionsCreated.Add(ctx, 1)
}

// RecordSessionRevoked records a session being closed.
// reason is one of "explicit", "expired", "ip_mismatch", "evicted", "revoke_all".
func (m *Metrics) RecordSessionRevoked(ctx context.Context, reason string) {
	m.SessionsRevoked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordCsrfRejection records an anti-forgery token rejection.
// reason is one of "unknown", "expired", "user_mismatch".
func (m *Metrics) RecordCsrfRejection(ctx context.Context, reason string) {
	m.CsrfRejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordRateLimitExceeded records a rate limit violation
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, limiterType string) {
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter_type", limiterType),
	))
}

// RecordSuspiciousRequest records a session revoked for an address change
func (m *Metrics) RecordSuspiciousRequest(ctx context.Context) {
	m.SuspiciousRequests.Add(ctx, 1)
}

// RecordAuditEvent records a security event being written to the trail
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
