package authcore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/audit"
	"github.com/venuehub/authcore/csrf"
	"github.com/venuehub/authcore/instrumentation"
	"github.com/venuehub/authcore/internal/util"
	"github.com/venuehub/authcore/ratelimit"
	"github.com/venuehub/authcore/security"
	"github.com/venuehub/authcore/session"
	"github.com/venuehub/authcore/throttle"
)

// Service wires the authentication security components together behind one
// facade: login throttling, sessions, CSRF tokens, rate limiting, and the
// security event sink, sharing a single clock, logger, and event stream.
//
// A Service is a long-lived object owned by the process entry point. Start
// launches the background sweeps; Stop halts them. The orchestration methods
// implement the login control flow; the component accessors expose the
// underlying managers for callers that need the full surface.
type Service struct {
	config   *Config
	logger   *slog.Logger
	clock    clockwork.Clock
	verifier CredentialVerifier

	events   *audit.Log
	guard    *audit.FloodGuard
	tracker  *throttle.Tracker
	sessions *session.Manager
	tokens   *csrf.Manager
	limiter  *ratelimit.Limiter
	inst     *instrumentation.Instrumentation

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Service. The verifier is required; it is only consulted for
// identifiers the attempt tracker has not locked out. A nil config gets the
// secure defaults.
//
// State is in-memory and single-process: sessions, lockouts, CSRF tokens, and
// rate counters do not survive restarts and are not shared across instances.
// Deployments that scale horizontally need sticky routing to keep these
// checks meaningful.
func New(config *Config, verifier CredentialVerifier) (*Service, error) {
	if verifier == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if config == nil {
		config = &Config{}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Apply secure defaults
	config = applySecureDefaults(config, logger)

	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var guard *audit.FloodGuard
	if !config.Audit.DisableFloodGuard {
		guard = audit.NewFloodGuard(audit.GuardConfig{
			Logger: logger,
			Clock:  clock,
		})
	}

	events := audit.New(audit.Config{
		Capacity: config.Audit.Capacity,
		Logger:   logger,
		Clock:    clock,
		Guard:    guard,
		Observer: metricsObserver(config.Instrumentation),
	})

	s := &Service{
		config:   config,
		logger:   logger,
		clock:    clock,
		verifier: verifier,
		events:   events,
		guard:    guard,
		inst:     config.Instrumentation,
		tracker: throttle.New(throttle.Config{
			MaxAttempts:  config.Throttle.MaxAttempts,
			Window:       config.Throttle.Window,
			LockDuration: config.Throttle.LockDuration,
			Logger:       logger,
			Clock:        clock,
			Events:       events,
		}),
		sessions: session.New(session.Config{
			Timeout:       config.Session.Timeout,
			MaxPerUser:    config.Session.MaxPerUser,
			SweepInterval: config.Session.SweepInterval,
			Logger:        logger,
			Clock:         clock,
			Events:        events,
		}),
		tokens: csrf.New(csrf.Config{
			Lifetime:      config.Csrf.TokenLifetime,
			SweepInterval: config.Csrf.SweepInterval,
			Logger:        logger,
			Clock:         clock,
			Events:        events,
		}),
		limiter: ratelimit.New(ratelimit.Config{
			BypassPaths:   config.RateLimit.BypassPaths,
			SweepInterval: config.RateLimit.SweepInterval,
			Logger:        logger,
			Clock:         clock,
			Events:        events,
		}),
	}

	if s.inst != nil {
		err := s.inst.RegisterSizeCallbacks(
			s.sessions.ActiveCount,
			s.tracker.TrackedCount,
			s.tokens.OutstandingCount,
			s.limiter.TrackedCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to register state gauges: %w", err)
		}
	}

	return s, nil
}

// metricsObserver bridges recorded security events to instrumentation
// counters. Returns nil when instrumentation is not configured.
//
// Rate limit events are skipped here: the limiter records one event per
// rejected window while the middleware counts every rejected request.
func metricsObserver(inst *instrumentation.Instrumentation) func(audit.Event) {
	if inst == nil {
		return nil
	}
	return func(e audit.Event) {
		ctx := context.Background()
		m := inst.Metrics()
		m.RecordAuditEvent(ctx, e.Type)

		switch e.Type {
		case audit.EventAuthFailure:
			m.RecordLockout(ctx)
		case audit.EventSessionCreated:
			m.RecordSessionCreated(ctx)
		case audit.EventSessionRevoked:
			m.RecordSessionRevoked(ctx, detailReason(e, "explicit"))
		case audit.EventSessionExpired:
			m.RecordSessionRevoked(ctx, "expired")
		case audit.EventSessionEvicted:
			m.RecordSessionRevoked(ctx, "evicted")
		case audit.EventSuspiciousRequest:
			m.RecordSuspiciousRequest(ctx)
			m.RecordSessionRevoked(ctx, "ip_mismatch")
		case audit.EventCsrfRejected, audit.EventCsrfUserMismatch:
			m.RecordCsrfRejection(ctx, detailReason(e, "unknown"))
		}
	}
}

// detailReason pulls the low-cardinality reason string out of an event's
// details.
func detailReason(e audit.Event, fallback string) string {
	if r, ok := e.Details["reason"].(string); ok && r != "" {
		return r
	}
	return fallback
}

// Start launches the background sweeps: expired sessions, expired CSRF
// tokens, stale rate counters, and idle flood guard sources. Calling Start
// more than once has no effect.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		s.sessions.Start()
		s.tokens.Start()
		s.limiter.Start()
		if s.guard != nil {
			s.guard.Start()
		}
		s.logger.Info("authentication core started",
			"session_timeout", s.config.Session.Timeout,
			"max_login_attempts", s.config.Throttle.MaxAttempts,
			"rate_limit", s.config.RateLimit.MaxRequests,
			"rate_window", s.config.RateLimit.Window)
	})
}

// Stop halts every background sweep. Safe to call multiple times. The
// Instrumentation passed in Config is not shut down here; its owner does
// that.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.sessions.Stop()
		s.tokens.Stop()
		s.limiter.Stop()
		if s.guard != nil {
			s.guard.Stop()
		}
		s.logger.Info("authentication core stopped")
	})
}

// Login runs the login control flow: lockout check, credential verification,
// failure or success recording, then session creation. The credential
// verifier is never consulted for a locked identifier.
//
// Failures return a *SecurityError: auth_throttled with a retry hint while
// locked, invalid_credentials otherwise. The attempt that trips the lockout
// threshold reports auth_throttled.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if s.tracker.IsLocked(req.Identifier) {
		remaining := s.tracker.GetRemainingLockTime(req.Identifier)
		s.logger.Warn("login rejected while locked out",
			"identifier_hash", security.HashForLogging(req.Identifier),
			"ip", req.IP,
			"retry_after", remaining)
		s.recordLoginMetric(ctx, "throttled")
		return nil, ErrAuthThrottled("Too many failed login attempts. Please try again later.").
			WithRetryAfter(remaining)
	}

	if err := s.verifier.Verify(ctx, req.Identifier, req.Password); err != nil {
		attempt := s.tracker.RecordFailedAttempt(req.Identifier, req.IP, req.UserAgent)
		s.recordLoginMetric(ctx, "failure")
		if attempt.Locked {
			return nil, ErrAuthThrottled("Too many failed login attempts. Please try again later.").
				WithRetryAfter(attempt.LockUntil.Sub(s.clock.Now()))
		}
		return nil, ErrInvalidCredentials(
			fmt.Sprintf("Invalid credentials. %d attempts remain before lockout.", attempt.Remaining))
	}

	s.tracker.RecordSuccessfulLogin(req.Identifier)

	sess := s.sessions.Create(req.Identifier, req.IP, req.UserAgent)
	token := s.tokens.Generate(sess.UserID)

	s.events.Record(audit.Event{
		Type:      audit.EventAuthSuccess,
		UserID:    sess.UserID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Details: map[string]any{
			"session_prefix": util.SafeTruncate(sess.ID, 8),
		},
	})
	s.recordLoginMetric(ctx, "success")

	return &LoginResult{Session: sess, CsrfToken: token}, nil
}

// Authenticate resolves the session for an authenticated request, refreshing
// its activity time. A nil session from the manager (missing, expired,
// revoked, or presented from the wrong IP) becomes a session_invalid error;
// the caller must require re-authentication.
func (s *Service) Authenticate(sessionID, ip string) (*session.Session, error) {
	sess := s.sessions.Validate(sessionID, ip)
	if sess == nil {
		return nil, ErrSessionInvalid("Session is invalid or expired. Please log in again.")
	}
	return sess, nil
}

// GenerateCsrfToken issues a fresh single-use token bound to the user.
func (s *Service) GenerateCsrfToken(userID string) string {
	return s.tokens.Generate(userID)
}

// ValidateCsrf checks and consumes a CSRF token for a state-mutating
// request. A rejected token (unknown, expired, already spent, or issued to a
// different user) returns a csrf_invalid error.
func (s *Service) ValidateCsrf(token, userID string) error {
	if !s.tokens.Validate(token, userID) {
		return ErrCsrfInvalid("CSRF token is invalid, expired, or already used.")
	}
	return nil
}

// Logout revokes the session. Revoking an unknown or already-revoked session
// is a no-op.
func (s *Service) Logout(sessionID string) {
	s.sessions.Revoke(sessionID)
}

// LogoutEverywhere revokes every active session the user has and returns how
// many were revoked.
func (s *Service) LogoutEverywhere(userID string) int {
	return s.sessions.RevokeAllUserSessions(userID)
}

func (s *Service) recordLoginMetric(ctx context.Context, result string) {
	if s.inst != nil {
		s.inst.Metrics().RecordLoginAttempt(ctx, result)
	}
}

// Events returns the security event sink.
func (s *Service) Events() *audit.Log {
	return s.events
}

// Throttle returns the login attempt tracker.
func (s *Service) Throttle() *throttle.Tracker {
	return s.tracker
}

// Sessions returns the session manager.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Csrf returns the CSRF token manager.
func (s *Service) Csrf() *csrf.Manager {
	return s.tokens
}

// RateLimiter returns the request rate limiter.
func (s *Service) RateLimiter() *ratelimit.Limiter {
	return s.limiter
}

// Stats aggregates live counters from every component
type Stats struct {
	Throttle   throttle.Stats
	Sessions   session.Stats
	Csrf       csrf.Stats
	RateLimit  ratelimit.Stats
	Audit      audit.Stats
	FloodGuard audit.GuardStats
}

// Stats returns a point-in-time snapshot of component counters for
// monitoring endpoints and debugging.
func (s *Service) Stats() Stats {
	st := Stats{
		Throttle:  s.tracker.Stats(),
		Sessions:  s.sessions.Stats(),
		Csrf:      s.tokens.Stats(),
		RateLimit: s.limiter.Stats(),
		Audit:     s.events.Stats(),
	}
	if s.guard != nil {
		st.FloodGuard = s.guard.Stats()
	}
	return st
}
