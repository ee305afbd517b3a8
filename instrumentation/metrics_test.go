package instrumentation

import (
	"context"
	"testing"
)

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx := context.Background()
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode int
		durationMs float64
	}{
		{"successful login", "POST", "/login", 200, 123.45},
		{"throttled login", "POST", "/login", 429, 12.34},
		{"authenticated request", "GET", "/account", 200, 34.56},
		{"rejected session", "GET", "/account", 401, 5.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Should not panic
			metrics.RecordHTTPRequest(ctx, tt.method, tt.endpoint, tt.statusCode, tt.durationMs)
		})
	}
}

func TestMetrics_RecordAuthenticationFlow(t *testing.T) {
	ctx := context.Background()
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	metrics.RecordLoginAttempt(ctx, "success")
	metrics.RecordLoginAttempt(ctx, "failure")
	metrics.RecordLoginAttempt(ctx, "throttled")

	metrics.RecordLockout(ctx)

	metrics.RecordSessionCreated(ctx)

	metrics.RecordSessionRevoked(ctx, "explicit")
	metrics.RecordSessionRevoked(ctx, "expired")
	metrics.RecordSessionRevoked(ctx, "ip_mismatch")
	metrics.RecordSessionRevoked(ctx, "evicted")
	metrics.RecordSessionRevoked(ctx, "revoke_all")

	metrics.RecordCsrfRejection(ctx, "unknown")
	metrics.RecordCsrfRejection(ctx, "expired")
	metrics.RecordCsrfRejection(ctx, "user_mismatch")

	// All should complete without panic
}

func TestMetrics_RecordSecurityEvents(t *testing.T) {
	ctx := context.Background()
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	metrics.RecordRateLimitExceeded(ctx, "ip")
	metrics.RecordRateLimitExceeded(ctx, "endpoint")

	metrics.RecordSuspiciousRequest(ctx)
	metrics.RecordSuspiciousRequest(ctx)

	metrics.RecordAuditEvent(ctx, "auth_failure")
	metrics.RecordAuditEvent(ctx, "suspicious_request")
	metrics.RecordAuditEvent(ctx, "rate_limit_exceeded")

	// All should complete without panic
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	ctx := context.Background()
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				metrics.RecordHTTPRequest(ctx, "POST", "/login", 200, 10.0)
				metrics.RecordLoginAttempt(ctx, "success")
				metrics.RecordSessionCreated(ctx)
				metrics.RecordSessionRevoked(ctx, "expired")
				metrics.RecordRateLimitExceeded(ctx, "ip")
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	// Should complete without race conditions or panics
}

func TestMetrics_NoOpBehavior(t *testing.T) {
	ctx := context.Background()
	// Test that disabled instrumentation doesn't error on metric recording
	inst, err := New(Config{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	metrics := inst.Metrics()

	// All these should be no-ops and not panic
	metrics.RecordHTTPRequest(ctx, "POST", "/login", 200, 10.0)
	metrics.RecordLoginAttempt(ctx, "success")
	metrics.RecordLockout(ctx)
	metrics.RecordSessionCreated(ctx)
	metrics.RecordSessionRevoked(ctx, "explicit")
	metrics.RecordCsrfRejection(ctx, "unknown")
	metrics.RecordRateLimitExceeded(ctx, "ip")
	metrics.RecordSuspiciousRequest(ctx)
	metrics.RecordAuditEvent(ctx, "test_event")

	// No panics = success
}
