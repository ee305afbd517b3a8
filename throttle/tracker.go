package throttle

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/audit"
	"github.com/venuehub/authcore/security"
)

const (
	// DefaultMaxAttempts is the failure count that triggers a lockout.
	DefaultMaxAttempts = 5

	// DefaultWindow is the rolling window within which failures accumulate.
	DefaultWindow = 5 * time.Minute

	// DefaultLockDuration is how long an identifier stays locked.
	DefaultLockDuration = 15 * time.Minute
)

// Config configures a Tracker.
type Config struct {
	// MaxAttempts is the failure count that triggers a lockout. Zero or
	// negative uses DefaultMaxAttempts.
	MaxAttempts int

	// Window is the rolling window within which failures accumulate. A
	// failure arriving later than Window after the previous one starts a
	// fresh count. Zero or negative uses DefaultWindow.
	Window time.Duration

	// LockDuration is how long an identifier stays locked after the
	// threshold is reached. Zero or negative uses DefaultLockDuration.
	LockDuration time.Duration

	Logger *slog.Logger
	Clock  clockwork.Clock

	// Events, when non-nil, receives a security event each time a lockout
	// triggers.
	Events *audit.Log
}

// record is the per-identifier failure state.
type record struct {
	count       int
	lastAttempt time.Time
	lockUntil   time.Time // zero while unlocked
}

// Attempt is the outcome of recording a failed login attempt.
type Attempt struct {
	// Locked reports whether the identifier is locked after this attempt.
	Locked bool

	// Remaining is how many further failures are tolerated before lockout,
	// clamped to zero.
	Remaining int

	// LockUntil is when the lock expires. Zero while unlocked.
	LockUntil time.Time
}

// Tracker counts failed login attempts per identifier and locks identifiers
// that fail too often. All methods are safe for concurrent use; the count
// update and the lock decision happen atomically under one lock, so two
// simultaneous failures cannot lose an increment.
type Tracker struct {
	mu       sync.Mutex
	attempts map[string]*record

	maxAttempts  int
	window       time.Duration
	lockDuration time.Duration

	logger *slog.Logger
	clock  clockwork.Clock
	events *audit.Log

	tracked atomic.Int64
}

// New creates a login attempt tracker.
func New(cfg Config) *Tracker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = DefaultLockDuration
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Tracker{
		attempts:     make(map[string]*record),
		maxAttempts:  cfg.MaxAttempts,
		window:       cfg.Window,
		lockDuration: cfg.LockDuration,
		logger:       cfg.Logger,
		clock:        cfg.Clock,
		events:       cfg.Events,
	}
}

// IsLocked reports whether the identifier is currently locked out. An
// expired lock is removed on the way through, so a caller that waits out
// the lock duration sees a clean slate. An identifier with no record is
// simply unlocked.
func (t *Tracker) IsLocked(identifier string) bool {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[identifier]
	if !ok || rec.lockUntil.IsZero() {
		return false
	}
	if now.Before(rec.lockUntil) {
		return true
	}

	// Lock expired: lazy reset
	delete(t.attempts, identifier)
	t.tracked.Add(-1)
	return false
}

// RecordFailedAttempt counts a failed login for the identifier. A failure
// arriving more than the window after the previous one restarts the count
// at 1; otherwise the count increments. Reaching the maximum sets the lock
// and emits an auth_failure security event. An active lock is never
// shortened: a further failure while locked extends it.
func (t *Tracker) RecordFailedAttempt(identifier, ip, userAgent string) Attempt {
	now := t.clock.Now()

	t.mu.Lock()
	rec, ok := t.attempts[identifier]
	switch {
	case !ok:
		rec = &record{count: 1}
		t.attempts[identifier] = rec
		t.tracked.Add(1)
	case now.Sub(rec.lastAttempt) > t.window:
		rec.count = 1
		// A lock that already expired is dropped with the stale window;
		// an active lock survives a window reset.
		if !rec.lockUntil.IsZero() && !now.Before(rec.lockUntil) {
			rec.lockUntil = time.Time{}
		}
	default:
		rec.count++
	}
	rec.lastAttempt = now

	lockTriggered := false
	if rec.count >= t.maxAttempts {
		rec.lockUntil = now.Add(t.lockDuration)
		lockTriggered = true
	}

	result := Attempt{
		Locked:    !rec.lockUntil.IsZero() && now.Before(rec.lockUntil),
		Remaining: max(0, t.maxAttempts-rec.count),
		LockUntil: rec.lockUntil,
	}
	count := rec.count
	t.mu.Unlock()

	if lockTriggered {
		t.logger.Warn("login identifier locked out",
			"identifier_hash", security.HashForLogging(identifier),
			"attempts", count,
			"lock_duration", t.lockDuration)
		if t.events != nil {
			t.events.Record(audit.Event{
				Type:      audit.EventAuthFailure,
				UserID:    identifier,
				IP:        ip,
				UserAgent: userAgent,
				Details: map[string]any{
					"attempts":              count,
					"lock_duration_seconds": int(t.lockDuration.Seconds()),
					"locked_until":          result.LockUntil,
				},
			})
		}
	}

	return result
}

// RecordSuccessfulLogin clears the identifier's failure history, including
// any active lock.
func (t *Tracker) RecordSuccessfulLogin(identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.attempts[identifier]; ok {
		delete(t.attempts, identifier)
		t.tracked.Add(-1)
	}
}

// GetRemainingLockTime returns how long the identifier stays locked, zero
// if it is not locked.
func (t *Tracker) GetRemainingLockTime(identifier string) time.Duration {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[identifier]
	if !ok || rec.lockUntil.IsZero() {
		return 0
	}

	remaining := rec.lockUntil.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Cleanup removes identifiers whose window and lock have both expired and
// returns how many were removed. The tracker reaps lazily during normal
// operation; Cleanup exists for callers that want to bound memory against
// abandoned identifiers.
func (t *Tracker) Cleanup() int {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, rec := range t.attempts {
		lockExpired := rec.lockUntil.IsZero() || !now.Before(rec.lockUntil)
		windowExpired := now.Sub(rec.lastAttempt) > t.window
		if lockExpired && windowExpired {
			delete(t.attempts, id)
			removed++
		}
	}

	if removed > 0 {
		t.tracked.Add(int64(-removed))
		t.logger.Debug("attempt tracker cleanup completed",
			"removed", removed,
			"remaining", len(t.attempts))
	}
	return removed
}

// TrackedCount returns the number of identifiers with live failure state.
func (t *Tracker) TrackedCount() int64 {
	return t.tracked.Load()
}

// Stats holds tracker statistics for monitoring
type Stats struct {
	TrackedIdentifiers int // Identifiers with live failure state
	LockedIdentifiers  int // Identifiers currently locked out
}

// Stats returns current tracker statistics.
func (t *Tracker) Stats() Stats {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{TrackedIdentifiers: len(t.attempts)}
	for _, rec := range t.attempts {
		if !rec.lockUntil.IsZero() && now.Before(rec.lockUntil) {
			s.LockedIdentifiers++
		}
	}
	return s
}
