package authcore

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/instrumentation"
)

// Config holds the authentication core configuration
// Structured using composition for better organization and maintainability
type Config struct {
	// ServerURL is the public base URL of the deployment. It is used when
	// building security response headers; HSTS is only sent when this is
	// an https URL.
	ServerURL string

	// Login attempt throttling and lockout settings
	Throttle ThrottleConfig

	// Session lifecycle settings
	Session SessionConfig

	// One-time CSRF token settings
	Csrf CsrfConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Security event sink settings
	Audit AuditConfig

	// Cross-cutting security settings (secure by default)
	Security SecurityConfig

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger

	// Clock supplies time to every component. If not provided, the real
	// clock is used. Tests inject a fake clock to simulate lockout and
	// expiry windows without sleeping.
	Clock clockwork.Clock

	// Instrumentation, when non-nil, receives metrics from the service.
	// Component table sizes are registered as observable gauges.
	Instrumentation *instrumentation.Instrumentation
}

// ThrottleConfig holds login attempt throttling configuration
type ThrottleConfig struct {
	// MaxAttempts is the failure count that triggers a lockout.
	// Default: 5
	MaxAttempts int

	// Window is the rolling window within which failures accumulate. A
	// failure arriving later than this after the previous one restarts
	// the count.
	// Default: 5 minutes
	Window time.Duration

	// LockDuration is how long an identifier stays locked after the
	// threshold is reached.
	// Default: 15 minutes
	LockDuration time.Duration
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	// Timeout is the inactivity window after which a session expires.
	// Default: 24 hours
	Timeout time.Duration

	// MaxPerUser caps concurrent sessions per user. A login beyond the
	// cap evicts the user's oldest session rather than failing.
	// Default: 5
	MaxPerUser int

	// SweepInterval is how often expired sessions are swept in the
	// background.
	// Default: 1 hour
	SweepInterval time.Duration
}

// CsrfConfig holds CSRF token configuration
type CsrfConfig struct {
	// TokenLifetime is how long an unspent token stays valid.
	// Default: 1 hour
	TokenLifetime time.Duration

	// SweepInterval is how often expired tokens are swept in the
	// background.
	// Default: 30 minutes
	SweepInterval time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Window is the fixed counting window the middleware applies per
	// client and path.
	// Default: 1 minute
	Window time.Duration

	// MaxRequests is the number of requests allowed per key per window.
	// Default: 100
	MaxRequests int

	// BypassPaths lists path prefixes exempt from rate limiting, such as
	// health checks and static assets.
	BypassPaths []string

	// SweepInterval is how often stale counters are swept.
	// Default: 5 minutes
	SweepInterval time.Duration
}

// AuditConfig holds security event sink configuration
type AuditConfig struct {
	// Capacity caps the number of retained events; the oldest entries are
	// dropped first. The sink is a diagnostic trail, not a system of
	// record.
	// Default: 1000
	Capacity int

	// DisableFloodGuard turns off per-source event throttling.
	// WARNING: Without the guard a hostile client can flood events and
	// push the useful diagnostic trail out of the capped log.
	DisableFloodGuard bool
}

// SecurityConfig holds cross-cutting security settings (secure by default)
type SecurityConfig struct {
	// TrustProxy enables trusting X-Forwarded-For and X-Real-IP headers.
	// WARNING: Only enable if behind a trusted reverse proxy (nginx,
	// HAProxy, etc.). When false, the direct connection IP is used
	// (secure by default).
	TrustProxy bool

	// TrustedProxyCount is the number of trusted proxies in front of this
	// server. Used with TrustProxy to correctly extract the client IP
	// from X-Forwarded-For.
	// Default: 1
	TrustedProxyCount int
}

// applySecureDefaults applies secure-by-default configuration values
// This follows the principle: secure by default, opt-in for less secure options
func applySecureDefaults(config *Config, logger *slog.Logger) *Config {
	// Time-based defaults
	if config.Throttle.MaxAttempts == 0 {
		config.Throttle.MaxAttempts = 5
	}
	if config.Throttle.Window == 0 {
		config.Throttle.Window = 5 * time.Minute
	}
	if config.Throttle.LockDuration == 0 {
		config.Throttle.LockDuration = 15 * time.Minute
	}
	if config.Session.Timeout == 0 {
		config.Session.Timeout = 24 * time.Hour
	}
	if config.Session.MaxPerUser == 0 {
		config.Session.MaxPerUser = 5
	}
	if config.Session.SweepInterval == 0 {
		config.Session.SweepInterval = time.Hour
	}
	if config.Csrf.TokenLifetime == 0 {
		config.Csrf.TokenLifetime = time.Hour
	}
	if config.Csrf.SweepInterval == 0 {
		config.Csrf.SweepInterval = 30 * time.Minute
	}
	if config.RateLimit.Window == 0 {
		config.RateLimit.Window = time.Minute
	}
	if config.RateLimit.MaxRequests == 0 {
		config.RateLimit.MaxRequests = 100
	}
	if config.RateLimit.SweepInterval == 0 {
		config.RateLimit.SweepInterval = 5 * time.Minute
	}
	if config.Audit.Capacity == 0 {
		config.Audit.Capacity = 1000
	}
	if config.Security.TrustedProxyCount == 0 {
		config.Security.TrustedProxyCount = 1
	}

	// User has explicitly weakened security settings - log warnings
	if config.Security.TrustProxy {
		logger.Warn("⚠️  SECURITY NOTICE: Trusting proxy headers",
			"risk", "IP spoofing if proxy is not properly configured",
			"recommendation", "Only enable behind trusted reverse proxies",
			"config", "TrustedProxyCount should match your proxy chain length")
	}
	if config.Audit.DisableFloodGuard {
		logger.Warn("⚠️  SECURITY WARNING: Audit flood guard is DISABLED",
			"risk", "Event flooding can evict the diagnostic trail from the capped log",
			"recommendation", "Leave the flood guard enabled in production")
	}
	if config.Session.Timeout > 7*24*time.Hour {
		logger.Warn("⚠️  SECURITY NOTICE: Long session inactivity timeout",
			"timeout", config.Session.Timeout,
			"risk", "Stolen session identifiers remain usable longer",
			"recommendation", "Keep the inactivity timeout at 24h or below")
	}

	return config
}
