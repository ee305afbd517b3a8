package ratelimit

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/audit"
	"github.com/venuehub/authcore/internal/util"
)

// DefaultSweepInterval is how often the background sweep reaps counters
// whose window has passed.
const DefaultSweepInterval = 5 * time.Minute

// Result is the outcome of one CheckAndIncrement call.
type Result struct {
	// Allowed is true while the window's count is within the limit.
	Allowed bool

	// Count is the number of requests seen this window, including the
	// current one and any already-rejected ones.
	Count int

	// Limit is the maximum the window allows, echoed from the call.
	Limit int

	// ResetAt is when the current window ends and the count restarts.
	ResetAt time.Time
}

// Remaining reports how many further requests the window will allow.
func (r Result) Remaining() int {
	return max(0, r.Limit-r.Count)
}

// Config configures a Limiter. The zero value is usable; New applies the
// package defaults.
type Config struct {
	// BypassPaths are request path prefixes exempt from limiting. A path
	// is exempt when it equals a prefix or extends it at a slash
	// boundary. Trailing slashes are ignored on both sides.
	BypassPaths []string

	// SweepInterval is the background cleanup cadence. Defaults to
	// DefaultSweepInterval.
	SweepInterval time.Duration

	// Logger receives operational log lines. Defaults to slog.Default().
	Logger *slog.Logger

	// Clock supplies time. Defaults to the real clock.
	Clock clockwork.Clock

	// Events receives a rate_limit_exceeded event for the first rejection
	// of each key's window. May be nil.
	Events *audit.Log
}

type counter struct {
	count   int
	resetAt time.Time
}

// Limiter owns the counter table. All methods are safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter

	bypass        []string
	sweepInterval time.Duration
	logger        *slog.Logger
	clock         clockwork.Clock
	events        *audit.Log

	tracked atomic.Int64

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Limiter. The background sweep does not run until Start is
// called; stale windows are still reset lazily by CheckAndIncrement.
func New(cfg Config) *Limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	var bypass []string
	for _, p := range cfg.BypassPaths {
		normalized := util.NormalizePath(p)
		if normalized == "" {
			// An empty prefix would exempt every path.
			cfg.Logger.Warn("ignoring rate limit bypass path that normalizes to empty", "path", p)
			continue
		}
		bypass = append(bypass, normalized)
	}

	return &Limiter{
		counters:      make(map[string]*counter),
		bypass:        bypass,
		sweepInterval: cfg.SweepInterval,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
		events:        cfg.Events,
		stop:          make(chan struct{}),
	}
}

// CheckAndIncrement counts one request against key and reports whether it
// fits within maxRequests per window. The counter resets once the window
// deadline passes; until then every call increments it, allowed or not.
func (l *Limiter) CheckAndIncrement(key string, window time.Duration, maxRequests int) Result {
	now := l.clock.Now()

	l.mu.Lock()
	c, ok := l.counters[key]
	if !ok || !now.Before(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		l.counters[key] = c
	}
	c.count++
	res := Result{
		Allowed: c.count <= maxRequests,
		Count:   c.count,
		Limit:   maxRequests,
		ResetAt: c.resetAt,
	}
	l.tracked.Store(int64(len(l.counters)))
	l.mu.Unlock()

	// Report the first rejection of each window; later rejections only
	// grow the count.
	if !res.Allowed && res.Count == maxRequests+1 {
		l.logger.Warn("rate limit exceeded",
			"key", key,
			"limit", maxRequests,
			"window", window.String(),
			"reset_at", res.ResetAt)
		if l.events != nil {
			l.events.Record(audit.Event{
				Type: audit.EventRateLimitExceeded,
				Details: map[string]any{
					"key":            key,
					"count":          res.Count,
					"limit":          maxRequests,
					"window_seconds": window.Seconds(),
					"reset_at":       res.ResetAt,
				},
			})
		}
	}

	return res
}

// Bypassed reports whether a request path is exempt from limiting.
func (l *Limiter) Bypassed(path string) bool {
	p := util.NormalizePath(path)
	for _, prefix := range l.bypass {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// Cleanup removes every counter whose window has passed and returns how
// many were removed.
func (l *Limiter) Cleanup() int {
	now := l.clock.Now()

	l.mu.Lock()
	var removed int
	for key, c := range l.counters {
		if !now.Before(c.resetAt) {
			delete(l.counters, key)
			removed++
		}
	}
	l.tracked.Store(int64(len(l.counters)))
	l.mu.Unlock()

	if removed > 0 {
		l.logger.Debug("reaped spent rate limit counters", "count", removed)
	}
	return removed
}

// Start launches the background sweep. Safe to call once; further calls
// are no-ops.
func (l *Limiter) Start() {
	l.startOnce.Do(func() {
		go l.sweepLoop()
	})
}

// Stop terminates the background sweep. Safe to call multiple times.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *Limiter) sweepLoop() {
	ticker := l.clock.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			l.Cleanup()
		case <-l.stop:
			return
		}
	}
}

// TrackedCount reports the number of counters currently held, including
// spent ones not yet swept.
func (l *Limiter) TrackedCount() int64 {
	return l.tracked.Load()
}

// Stats holds counter table statistics for monitoring
type Stats struct {
	TrackedCounters int // Live per-key windows, including stale ones not yet swept
}

// Stats returns current counter table statistics.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{TrackedCounters: len(l.counters)}
}
