package authcore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/venuehub/authcore/security"
)

// RateLimitMiddleware wraps next with fixed-window rate limiting keyed by
// client IP and request path. Every limited response carries the
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset headers;
// a rejected request gets 429 with a Retry-After header and a JSON error
// body. Paths matching a configured bypass prefix skip limiting entirely.
func (s *Service) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter.Bypassed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := security.GetClientIP(r, s.config.Security.TrustProxy, s.config.Security.TrustedProxyCount)
		key := clientIP + "|" + r.URL.Path
		res := s.limiter.CheckAndIncrement(key, s.config.RateLimit.Window, s.config.RateLimit.MaxRequests)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining()))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			s.logger.Warn("Rate limit exceeded",
				"ip", clientIP,
				"path", r.URL.Path,
				"count", res.Count,
				"limit", res.Limit)
			if s.inst != nil {
				s.inst.Metrics().RecordRateLimitExceeded(r.Context(), "ip")
			}
			s.WriteError(w, ErrRateLimited("Rate limit exceeded. Please try again later.").
				WithRetryAfter(res.ResetAt.Sub(s.clock.Now())))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SecurityHeadersMiddleware attaches the baseline security response headers
// to every response. HSTS is only included when the configured server URL
// is https.
func (s *Service) SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		security.SetSecurityHeaders(w, s.config.ServerURL)
		next.ServeHTTP(w, r)
	})
}

// MetricsMiddleware records request counts and latency when instrumentation
// is configured; otherwise it returns next unchanged.
func (s *Service) MetricsMiddleware(next http.Handler) http.Handler {
	if s.inst == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Seconds() * 1000 // convert to milliseconds
		s.inst.Metrics().RecordHTTPRequest(r.Context(), r.Method, endpointLabel(r.URL.Path), rec.status, duration)
	})
}

// Handler wraps next with the full middleware chain: request IDs, request
// metrics, security headers, then rate limiting.
func (s *Service) Handler(next http.Handler) http.Handler {
	return security.RequestIDMiddleware(
		s.MetricsMiddleware(
			s.SecurityHeadersMiddleware(
				s.RateLimitMiddleware(next))))
}

// WriteError writes err as a JSON error response. SecurityError values keep
// their code, status, and retry hint; any other error becomes a generic 500.
// The baseline security headers are attached in every case, including
// internal failures.
func (s *Service) WriteError(w http.ResponseWriter, err error) {
	security.SetSecurityHeaders(w, s.config.ServerURL)

	var secErr *SecurityError
	if !errors.As(err, &secErr) {
		secErr = NewSecurityError(ErrorCodeServerError, "Internal server error.", http.StatusInternalServerError)
	}

	retryAfter := secErr.RetryAfterSeconds()
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(secErr.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:      secErr.Code,
		Message:    secErr.Message,
		RetryAfter: retryAfter,
	})
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// endpointLabel reduces a request path to its leading segment so metric
// label cardinality stays bounded.
func endpointLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}
