package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestRecordError(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	testErr := errors.New("test error")
	RecordError(span, testErr)

	// Should not panic
}

func TestSetSpanSuccess(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	SetSpanSuccess(span)

	// Should not panic
}

func TestSetSpanError(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	SetSpanError(span, "validation failed")

	// Should not panic
}

func TestAddLoginAttributes(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	AddLoginAttributes(span, "test-user", "success")
	AddLoginAttributes(span, "test-user-2", "")
	AddLoginAttributes(span, "", "failure")

	// Should not panic
}

func TestAddSessionAttributes(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	AddSessionAttributes(span, true, "")
	AddSessionAttributes(span, false, "ip_mismatch")
	AddSessionAttributes(span, false, "expired")

	// Should not panic
}

func TestAddCsrfAttributes(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	AddCsrfAttributes(span, "user_mismatch")
	AddCsrfAttributes(span, "")

	// Should not panic
}

func TestAddHTTPAttributes(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("http").Start(ctx, "test-span")
	defer span.End()

	AddHTTPAttributes(span, "POST", "/login", 200)
	AddHTTPAttributes(span, "GET", "/account", 401)

	// Should not panic
}

func TestAddSecurityAttributes(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("security").Start(ctx, "test-span")
	defer span.End()

	AddSecurityAttributes(span, "203.0.113.7")
	AddSecurityAttributes(span, "")

	// Should not panic
}

func TestNilSpanSafety(t *testing.T) {
	// All span helpers must tolerate nil spans without panicking
	RecordError(nil, errors.New("test error"))
	RecordError(nil, nil)
	SetSpanSuccess(nil)
	SetSpanError(nil, "message")
	SetSpanAttributes(nil, attribute.String("key", "value"))
	AddLoginAttributes(nil, "user", "success")
	AddSessionAttributes(nil, true, "reason")
	AddCsrfAttributes(nil, "reason")
	AddHTTPAttributes(nil, "GET", "/", 200)
	AddSecurityAttributes(nil, "203.0.113.7")
}

func TestNilErrorSafety(t *testing.T) {
	inst, err := New(Config{
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, span := inst.Tracer("auth").Start(ctx, "test-span")
	defer span.End()

	// Recording a nil error must not set error status or panic
	RecordError(span, nil)
}
