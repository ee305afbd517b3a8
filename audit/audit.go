package audit

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/security"
)

// DefaultCapacity is the maximum number of events retained in memory.
const DefaultCapacity = 1000

// Event represents a single security or audit event. Events are immutable
// once recorded; callers must not modify an Event obtained from Query.
type Event struct {
	ID        string
	Type      string
	UserID    string
	IP        string
	UserAgent string
	RequestID string
	Details   map[string]any
	Timestamp time.Time
}

// Filter selects events in a Query. Zero-valued fields match everything.
type Filter struct {
	Type   string
	UserID string
	Since  time.Time
}

// Config configures the event sink.
type Config struct {
	// Capacity caps the number of retained events. Zero or negative uses
	// DefaultCapacity.
	Capacity int

	// Logger receives a structured mirror of every recorded event. Nil uses
	// slog.Default().
	Logger *slog.Logger

	// Clock stamps events. Nil uses the real clock.
	Clock clockwork.Clock

	// Guard, when non-nil, throttles event recording per source. Events
	// rejected by the guard are counted as dropped and never appended.
	Guard *FloodGuard

	// Observer, when non-nil, is invoked for every event that passes the
	// guard, after it is appended. It bridges events to metrics. Must be
	// safe for concurrent use and must not block.
	Observer func(Event)
}

// Log is the bounded in-memory security event sink. Appends drop the oldest
// entries once the capacity is reached. All methods are safe for concurrent
// use.
type Log struct {
	mu       sync.RWMutex
	entries  []Event
	capacity int

	logger   *slog.Logger
	clock    clockwork.Clock
	guard    *FloodGuard
	observer func(Event)

	size    atomic.Int64
	total   atomic.Int64
	dropped atomic.Int64
}

// New creates an event sink.
func New(cfg Config) *Log {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Log{
		entries:  make([]Event, 0, cfg.Capacity),
		capacity: cfg.Capacity,
		logger:   cfg.Logger,
		clock:    cfg.Clock,
		guard:    cfg.Guard,
		observer: cfg.Observer,
	}
}

// Record appends an event to the sink. It never fails: a missing ID is
// assigned, the timestamp is always stamped by the sink's clock, and
// flood-guarded events are silently counted as dropped. Recording also
// mirrors the event to structured logging with the user identifier hashed.
func (l *Log) Record(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Timestamp = l.clock.Now()

	if l.guard != nil && !l.guard.Allow(e.Type+"|"+e.IP) {
		l.dropped.Add(1)
		return
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		excess := len(l.entries) - l.capacity
		copy(l.entries, l.entries[excess:])
		l.entries = l.entries[:l.capacity]
	}
	l.size.Store(int64(len(l.entries)))
	l.mu.Unlock()

	l.total.Add(1)

	l.logger.Info("security_event",
		"event_id", e.ID,
		"event_type", e.Type,
		"user_hash", security.HashForLogging(e.UserID),
		"ip", e.IP,
		"request_id", e.RequestID,
		"details", e.Details,
		"timestamp", e.Timestamp,
	)

	if l.observer != nil {
		l.observer(e)
	}
}

// Query returns the most recent events matching the filter, newest first.
// A limit of zero or less returns every match.
func (l *Log) Query(f Filter, limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len returns the number of events currently retained.
func (l *Log) Len() int {
	return int(l.size.Load())
}

// Total returns the number of events recorded since construction, including
// those the capacity has since pushed out.
func (l *Log) Total() int64 {
	return l.total.Load()
}

// Dropped returns the number of events rejected by the flood guard.
func (l *Log) Dropped() int64 {
	return l.dropped.Load()
}

// Stats holds event sink statistics for monitoring
type Stats struct {
	Retained int   // Events currently held
	Total    int64 // Events recorded since construction
	Dropped  int64 // Events rejected by the flood guard
}

// Stats returns current sink statistics.
func (l *Log) Stats() Stats {
	return Stats{
		Retained: l.Len(),
		Total:    l.total.Load(),
		Dropped:  l.dropped.Load(),
	}
}
