package util

import "testing"

func TestSafeTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "string shorter than maxLen",
			input:  "short",
			maxLen: 10,
			want:   "short",
		},
		{
			name:   "string equal to maxLen",
			input:  "exactly10c",
			maxLen: 10,
			want:   "exactly10c",
		},
		{
			name:   "string longer than maxLen",
			input:  "this-is-a-very-long-token-string",
			maxLen: 8,
			want:   "this-is-",
		},
		{
			name:   "empty string",
			input:  "",
			maxLen: 5,
			want:   "",
		},
		{
			name:   "maxLen is zero",
			input:  "test",
			maxLen: 0,
			want:   "",
		},
		{
			name:   "maxLen is negative (edge case)",
			input:  "test",
			maxLen: -1,
			want:   "",
		},
		{
			name:   "unicode characters",
			input:  "hello世界test",
			maxLen: 8,
			want:   "hello世",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeTruncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("SafeTruncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSafeTruncate_NoPanic(t *testing.T) {
	// Ensure SafeTruncate never panics, even with edge cases
	testCases := []struct {
		input  string
		maxLen int
	}{
		{"", 0},
		{"", -1},
		{"test", 0},
		{"test", -1},
		{"test", 100},
	}

	for _, tc := range testCases {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("SafeTruncate(%q, %d) panicked: %v", tc.input, tc.maxLen, r)
				}
			}()
			_ = SafeTruncate(tc.input, tc.maxLen)
		}()
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "path with trailing slash",
			input: "/healthz/",
			want:  "/healthz",
		},
		{
			name:  "path without trailing slash",
			input: "/healthz",
			want:  "/healthz",
		},
		{
			name:  "path with multiple trailing slashes",
			input: "/static///",
			want:  "/static",
		},
		{
			name:  "nested path with trailing slash",
			input: "/api/v1/",
			want:  "/api/v1",
		},
		{
			name:  "nested path without trailing slash",
			input: "/api/v1",
			want:  "/api/v1",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "root path",
			input: "/",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePath_Comparison(t *testing.T) {
	// Paths with and without trailing slashes are equal after normalization.
	testCases := []struct {
		path1 string
		path2 string
	}{
		{"/healthz", "/healthz/"},
		{"/static/css", "/static/css/"},
		{"/api/v1/status", "/api/v1/status/"},
	}

	for _, tc := range testCases {
		normalized1 := NormalizePath(tc.path1)
		normalized2 := NormalizePath(tc.path2)
		if normalized1 != normalized2 {
			t.Errorf("Expected NormalizePath(%q) == NormalizePath(%q), got %q != %q",
				tc.path1, tc.path2, normalized1, normalized2)
		}
	}
}
