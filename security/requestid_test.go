package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()

	// 16 bytes base64url without padding is 22 characters
	if len(id) != 22 {
		t.Errorf("GenerateRequestID() length = %d, want 22", len(id))
	}
	if !isValidRequestID(id) {
		t.Errorf("GenerateRequestID() = %q, not a valid request ID", id)
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("GenerateRequestID() produced duplicate %q after %d IDs", id, i)
		}
		seen[id] = true
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID(empty context) = %q, want \"\"", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}
}

func TestIsValidRequestID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"alphanumeric", "abc123XYZ", true},
		{"with hyphens", "req-abc-123", true},
		{"with underscores", "req_abc_123", true},
		{"uuid style", "550e8400-e29b-41d4-a716-446655440000", true},
		{"single char", "a", true},
		{"max length", strings.Repeat("a", 128), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 129), false},
		{"CRLF injection", "abc\r\nSet-Cookie: evil", false},
		{"newline", "abc\ndef", false},
		{"spaces", "abc def", false},
		{"special chars", "abc;def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidRequestID(tt.id); got != tt.want {
				t.Errorf("isValidRequestID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var ctxID string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	headerID := w.Header().Get(RequestIDHeader)
	if headerID == "" {
		t.Fatal("middleware did not set response request ID header")
	}
	if ctxID != headerID {
		t.Errorf("context ID = %q, header ID = %q, want equal", ctxID, headerID)
	}
}

func TestRequestIDMiddleware_PreservesUpstreamID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "upstream-id-42" {
		t.Errorf("request ID = %q, want preserved upstream ID %q", got, "upstream-id-42")
	}
}

func TestRequestIDMiddleware_ReplacesInvalidUpstreamID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "evil\r\ninjection")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	got := w.Header().Get(RequestIDHeader)
	if got == "" {
		t.Fatal("middleware did not set response request ID header")
	}
	if strings.Contains(got, "evil") {
		t.Errorf("request ID = %q, invalid upstream ID should have been replaced", got)
	}
}
