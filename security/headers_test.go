package security

import (
	"net/http/httptest"
	"testing"
)

func TestSetSecurityHeaders(t *testing.T) {
	tests := []struct {
		name      string
		serverURL string
		wantHSTS  bool
	}{
		{
			name:      "HTTPS server",
			serverURL: "https://example.com",
			wantHSTS:  true,
		},
		{
			name:      "HTTP server",
			serverURL: "http://example.com",
			wantHSTS:  false,
		},
		{
			name:      "invalid URL",
			serverURL: "://invalid",
			wantHSTS:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			SetSecurityHeaders(w, tt.serverURL)

			want := map[string]string{
				"X-Frame-Options":         "DENY",
				"X-Content-Type-Options":  "nosniff",
				"X-XSS-Protection":        "1; mode=block",
				"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
				"Referrer-Policy":         "no-referrer",
				"Cache-Control":           "no-store, no-cache, must-revalidate, private",
				"Pragma":                  "no-cache",
			}
			for header, value := range want {
				if got := w.Header().Get(header); got != value {
					t.Errorf("%s = %q, want %q", header, got, value)
				}
			}

			hsts := w.Header().Get("Strict-Transport-Security")
			if tt.wantHSTS {
				if hsts != "max-age=31536000; includeSubDomains" {
					t.Errorf("Strict-Transport-Security = %q, want %q", hsts, "max-age=31536000; includeSubDomains")
				}
			} else if hsts != "" {
				t.Errorf("Strict-Transport-Security should not be set for HTTP, got %q", hsts)
			}
		})
	}
}

func TestSetSecurityHeaders_OverwritesExisting(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("X-Frame-Options", "SAMEORIGIN")

	SetSecurityHeaders(w, "https://example.com")

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want %q after SetSecurityHeaders", got, "DENY")
	}
}
