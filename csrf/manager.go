package csrf

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"

	"github.com/venuehub/authcore/audit"
	"github.com/venuehub/authcore/internal/util"
	"github.com/venuehub/authcore/security"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	// DefaultLifetime is how long an unspent token stays valid.
	DefaultLifetime = time.Hour

	// DefaultSweepInterval is how often the background sweep reaps
	// expired tokens.
	DefaultSweepInterval = 30 * time.Minute
)

// Config configures a Manager. The zero value is usable; New applies the
// package defaults.
type Config struct {
	// Lifetime bounds token validity. Defaults to DefaultLifetime.
	Lifetime time.Duration

	// SweepInterval is the background cleanup cadence. Defaults to
	// DefaultSweepInterval.
	SweepInterval time.Duration

	// Logger receives operational log lines. Defaults to slog.Default().
	Logger *slog.Logger

	// Clock supplies time. Defaults to the real clock.
	Clock clockwork.Clock

	// Events receives token rejection events. May be nil.
	Events *audit.Log
}

type tokenRecord struct {
	userID    string
	expiresAt time.Time
}

// Manager holds outstanding tokens. All methods are safe for concurrent
// use.
type Manager struct {
	mu     sync.Mutex
	tokens map[string]tokenRecord

	lifetime      time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
	clock         clockwork.Clock
	events        *audit.Log

	outstanding atomic.Int64

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Manager. The background sweep does not run until Start is
// called; expired tokens are still rejected on validation.
func New(cfg Config) *Manager {
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultLifetime
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Manager{
		tokens:        make(map[string]tokenRecord),
		lifetime:      cfg.Lifetime,
		sweepInterval: cfg.SweepInterval,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
		events:        cfg.Events,
		stop:          make(chan struct{}),
	}
}

// Generate issues a fresh token bound to userID, valid for the configured
// lifetime or until spent, whichever comes first.
func (m *Manager) Generate(userID string) string {
	token := oauth2.GenerateVerifier()

	m.mu.Lock()
	m.tokens[token] = tokenRecord{
		userID:    userID,
		expiresAt: m.clock.Now().Add(m.lifetime),
	}
	m.outstanding.Store(int64(len(m.tokens)))
	m.mu.Unlock()

	return token
}

// Validate spends the token if it is known, unexpired, and was issued to
// userID. The lookup and the delete are one atomic step: of any number of
// concurrent calls with the same token, at most one returns true.
//
// A token presented by the wrong user is rejected but left outstanding for
// its rightful owner.
func (m *Manager) Validate(token, userID string) bool {
	now := m.clock.Now()

	m.mu.Lock()
	rec, ok := m.tokens[token]
	if !ok {
		m.mu.Unlock()
		m.reject(audit.EventCsrfRejected, userID, token, "unknown", nil)
		return false
	}
	if now.After(rec.expiresAt) {
		delete(m.tokens, token)
		m.outstanding.Store(int64(len(m.tokens)))
		m.mu.Unlock()
		m.reject(audit.EventCsrfRejected, userID, token, "expired", nil)
		return false
	}
	if rec.userID != userID {
		m.mu.Unlock()
		m.reject(audit.EventCsrfUserMismatch, userID, token, "user_mismatch", map[string]any{
			"issued_to_hash": security.HashForLogging(rec.userID),
		})
		return false
	}
	delete(m.tokens, token)
	m.outstanding.Store(int64(len(m.tokens)))
	m.mu.Unlock()

	return true
}

// Cleanup removes every expired token and returns how many were removed.
func (m *Manager) Cleanup() int {
	now := m.clock.Now()

	m.mu.Lock()
	var removed int
	for token, rec := range m.tokens {
		if now.After(rec.expiresAt) {
			delete(m.tokens, token)
			removed++
		}
	}
	m.outstanding.Store(int64(len(m.tokens)))
	m.mu.Unlock()

	if removed > 0 {
		m.logger.Debug("reaped expired anti-forgery tokens", "count", removed)
	}
	return removed
}

// Start launches the background sweep. Safe to call once; further calls
// are no-ops.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		go m.sweepLoop()
	})
}

// Stop terminates the background sweep. Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

func (m *Manager) sweepLoop() {
	ticker := m.clock.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.Cleanup()
		case <-m.stop:
			return
		}
	}
}

// OutstandingCount reports the number of unspent tokens, including expired
// ones not yet swept.
func (m *Manager) OutstandingCount() int64 {
	return m.outstanding.Load()
}

// Stats holds token table statistics for monitoring
type Stats struct {
	OutstandingTokens int // Issued tokens not yet spent or swept
}

// Stats returns current token table statistics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{OutstandingTokens: len(m.tokens)}
}

func (m *Manager) reject(eventType, userID, token, reason string, extra map[string]any) {
	m.logger.Warn("anti-forgery token rejected",
		"reason", reason,
		"user_hash", security.HashForLogging(userID),
		"token_prefix", util.SafeTruncate(token, 8))

	if m.events == nil {
		return
	}
	details := map[string]any{
		"reason":       reason,
		"token_prefix": util.SafeTruncate(token, 8),
	}
	for k, v := range extra {
		details[k] = v
	}
	m.events.Record(audit.Event{
		Type:    eventType,
		UserID:  userID,
		Details: details,
	})
}
