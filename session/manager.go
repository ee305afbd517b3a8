package session

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/audit"
	"github.com/venuehub/authcore/internal/util"
	"github.com/venuehub/authcore/security"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	// DefaultTimeout is the inactivity window after which a session
	// expires. Activity means a successful Validate call.
	DefaultTimeout = 24 * time.Hour

	// DefaultMaxPerUser caps concurrent sessions per user. Logins beyond
	// the cap evict the user's oldest session.
	DefaultMaxPerUser = 5

	// DefaultSweepInterval is how often the background sweep removes
	// expired sessions.
	DefaultSweepInterval = time.Hour
)

// Session is a server-held login session. Values returned by Manager
// methods are snapshots and can be retained or mutated freely by callers.
type Session struct {
	// ID is a 256-bit random identifier in lowercase hex.
	ID string

	// UserID is the account the session belongs to.
	UserID string

	// IP is the client address the session was created from. Validation
	// from any other address revokes the session.
	IP string

	// UserAgent is the client's User-Agent header at login, kept for
	// audit trails only.
	UserAgent string

	CreatedAt      time.Time
	LastActivityAt time.Time

	// Active is false on snapshots of sessions that were revoked,
	// expired, or evicted.
	Active bool
}

// Config configures a Manager. The zero value is usable; New applies the
// package defaults.
type Config struct {
	// Timeout is the inactivity window. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxPerUser caps concurrent sessions per user. Defaults to
	// DefaultMaxPerUser.
	MaxPerUser int

	// SweepInterval is the background cleanup cadence. Defaults to
	// DefaultSweepInterval.
	SweepInterval time.Duration

	// Logger receives operational log lines. Defaults to slog.Default().
	Logger *slog.Logger

	// Clock supplies time. Defaults to the real clock.
	Clock clockwork.Clock

	// Events receives session lifecycle and violation events. May be nil.
	Events *audit.Log
}

// Manager owns the session table. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[string]map[string]struct{}

	timeout       time.Duration
	maxPerUser    int
	sweepInterval time.Duration
	logger        *slog.Logger
	clock         clockwork.Clock
	events        *audit.Log

	active atomic.Int64

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Manager. The background sweep does not run until Start is
// called; expired sessions are still rejected lazily by Validate.
func New(cfg Config) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxPerUser <= 0 {
		cfg.MaxPerUser = DefaultMaxPerUser
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
		sessions:      make(map[string]*Session),
		byUser:        make(map[string]map[string]struct{}),
		timeout:       cfg.Timeout,
		maxPerUser:    cfg.MaxPerUser,
		sweepInterval: cfg.SweepInterval,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
		events:        cfg.Events,
		stop:          make(chan struct{}),
	}
}

// Create opens a new session for userID from the given client address and
// user agent, and returns a snapshot of it. If the user is already at the
// session cap, their oldest session by creation time is evicted.
func (m *Manager) Create(userID, ip, userAgent string) *Session {
	now := m.clock.Now()
	s := &Session{
		ID:             security.GenerateSessionID(),
		UserID:         userID,
		IP:             ip,
		UserAgent:      userAgent,
		CreatedAt:      now,
		LastActivityAt: now,
		Active:         true,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	set := m.byUser[userID]
	if set == nil {
		set = make(map[string]struct{})
		m.byUser[userID] = set
	}
	set[s.ID] = struct{}{}
	m.active.Add(1)

	var evicted Session
	var hasEvicted bool
	if len(set) > m.maxPerUser {
		if oldest := m.oldestLocked(userID, s.ID); oldest != nil {
			m.removeLocked(oldest)
			evicted = *oldest
			hasEvicted = true
		}
	}
	snapshot := *s
	m.mu.Unlock()

	if hasEvicted {
		m.logger.Info("session evicted by per-user cap",
			"user_hash", security.HashForLogging(userID),
			"session_prefix", util.SafeTruncate(evicted.ID, 8),
			"max_per_user", m.maxPerUser)
		m.emit(audit.EventSessionEvicted, &evicted, map[string]any{
			"session_id":         evicted.ID,
			"replaced_by_prefix": util.SafeTruncate(snapshot.ID, 8),
		})
	}
	m.logger.Debug("session created",
		"user_hash", security.HashForLogging(userID),
		"session_prefix", util.SafeTruncate(snapshot.ID, 8))
	// Only a prefix: the session is live and the sink mirrors details to logs.
	m.emit(audit.EventSessionCreated, &snapshot, map[string]any{
		"session_prefix": util.SafeTruncate(snapshot.ID, 8),
	})

	return &snapshot
}

// Validate checks that sessionID exists, has not been idle past the
// timeout, and is presented from the IP it was created with. On success it
// refreshes the activity timestamp and returns a snapshot. On any failure
// it returns nil; timeout and IP mismatch additionally revoke the session,
// the latter recording a suspicious_request event.
func (m *Manager) Validate(sessionID, ip string) *Session {
	now := m.clock.Now()

	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.Active {
		m.mu.Unlock()
		return nil
	}

	if now.Sub(s.LastActivityAt) > m.timeout {
		m.removeLocked(s)
		snapshot := *s
		m.mu.Unlock()

		m.logger.Debug("session expired",
			"user_hash", security.HashForLogging(snapshot.UserID),
			"session_prefix", util.SafeTruncate(sessionID, 8),
			"idle", now.Sub(snapshot.LastActivityAt).String())
		m.emit(audit.EventSessionExpired, &snapshot, map[string]any{
			"session_id": snapshot.ID,
		})
		return nil
	}

	if s.IP != ip {
		m.removeLocked(s)
		snapshot := *s
		m.mu.Unlock()

		m.logger.Warn("session presented from unexpected address, revoking",
			"user_hash", security.HashForLogging(snapshot.UserID),
			"session_prefix", util.SafeTruncate(sessionID, 8),
			"original_ip", snapshot.IP,
			"new_ip", ip)
		suspicious := snapshot
		suspicious.IP = ip
		m.emit(audit.EventSuspiciousRequest, &suspicious, map[string]any{
			"session_id":        snapshot.ID,
			"original_ip":       snapshot.IP,
			"new_ip":            ip,
			"original_ip_class": security.ClassifyIP(snapshot.IP).String(),
			"new_ip_class":      security.ClassifyIP(ip).String(),
		})
		return nil
	}

	s.LastActivityAt = now
	snapshot := *s
	m.mu.Unlock()
	return &snapshot
}

// Revoke removes the session if it exists. Revoking an unknown or already
// revoked session is a no-op.
func (m *Manager) Revoke(sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return
	}
	m.removeLocked(s)
	snapshot := *s
	m.mu.Unlock()

	m.logger.Debug("session revoked",
		"user_hash", security.HashForLogging(snapshot.UserID),
		"session_prefix", util.SafeTruncate(sessionID, 8))
	m.emit(audit.EventSessionRevoked, &snapshot, map[string]any{
		"session_id": snapshot.ID,
		"reason":     "explicit",
	})
}

// RevokeAllUserSessions removes every session belonging to userID and
// returns how many were removed.
func (m *Manager) RevokeAllUserSessions(userID string) int {
	m.mu.Lock()
	set := m.byUser[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	snapshots := make([]Session, 0, len(ids))
	for _, id := range ids {
		s := m.sessions[id]
		m.removeLocked(s)
		snapshots = append(snapshots, *s)
	}
	m.mu.Unlock()

	if len(snapshots) == 0 {
		return 0
	}
	m.logger.Info("revoked all sessions for user",
		"user_hash", security.HashForLogging(userID),
		"count", len(snapshots))
	for i := range snapshots {
		m.emit(audit.EventSessionRevoked, &snapshots[i], map[string]any{
			"session_id": snapshots[i].ID,
			"reason":     "revoke_all",
		})
	}
	return len(snapshots)
}

// GetUserSessions returns snapshots of the user's sessions that are active
// and within the inactivity timeout, ordered oldest first by creation
// time. It does not refresh activity or remove expired sessions.
func (m *Manager) GetUserSessions(userID string) []*Session {
	now := m.clock.Now()

	m.mu.RLock()
	out := make([]*Session, 0, len(m.byUser[userID]))
	for id := range m.byUser[userID] {
		s := m.sessions[id]
		if now.Sub(s.LastActivityAt) > m.timeout {
			continue
		}
		snapshot := *s
		out = append(out, &snapshot)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Cleanup removes every session idle past the timeout and returns how many
// were removed. Validate rejects expired sessions on its own; Cleanup only
// reclaims memory for sessions nobody presents anymore.
func (m *Manager) Cleanup() int {
	now := m.clock.Now()

	m.mu.Lock()
	var expired []Session
	for _, s := range m.sessions {
		if now.Sub(s.LastActivityAt) > m.timeout {
			expired = append(expired, *s)
			m.removeLocked(s)
		}
	}
	m.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	m.logger.Debug("session sweep removed expired sessions", "count", len(expired))
	for i := range expired {
		m.emit(audit.EventSessionExpired, &expired[i], map[string]any{
			"session_id": expired[i].ID,
		})
	}
	return len(expired)
}

// Start launches the background sweep. Safe to call once; further calls
// are no-ops.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		go m.sweepLoop()
	})
}

// Stop terminates the background sweep. Sessions remain valid; only the
// periodic cleanup stops. Safe to call multiple times.
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

// ActiveCount reports the number of sessions currently held, including
// expired ones not yet swept.
func (m *Manager) ActiveCount() int64 {
	return m.active.Load()
}

// Stats holds session table statistics for monitoring
type Stats struct {
	ActiveSessions int // Sessions currently in the table
	Users          int // Users with at least one session
}

// Stats returns current session table statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		ActiveSessions: len(m.sessions),
		Users:          len(m.byUser),
	}
}

// oldestLocked returns the user's session with the earliest creation time,
// skipping excludeID. Caller holds mu.
func (m *Manager) oldestLocked(userID, excludeID string) *Session {
	var oldest *Session
	for id := range m.byUser[userID] {
		if id == excludeID {
			continue
		}
		s := m.sessions[id]
		if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
		}
	}
	return oldest
}

// removeLocked deletes s from both indexes and marks it inactive. Caller
// holds mu.
func (m *Manager) removeLocked(s *Session) {
	s.Active = false
	delete(m.sessions, s.ID)
	if set := m.byUser[s.UserID]; set != nil {
		delete(set, s.ID)
		if len(set) == 0 {
			delete(m.byUser, s.UserID)
		}
	}
	m.active.Add(-1)
}

func (m *Manager) emit(eventType string, s *Session, details map[string]any) {
	if m.events == nil {
		return
	}
	m.events.Record(audit.Event{
		Type:      eventType,
		UserID:    s.UserID,
		IP:        s.IP,
		UserAgent: s.UserAgent,
		Details:   details,
	})
}
