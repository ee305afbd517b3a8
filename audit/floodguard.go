package audit

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// guardEntry tracks one event source's token bucket and its last activity.
type guardEntry struct {
	source   string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// GuardConfig configures a FloodGuard.
type GuardConfig struct {
	// EventsPerSecond is the sustained per-source event rate. Zero or
	// negative uses 10.
	EventsPerSecond int

	// Burst is the per-source burst allowance. Zero or negative uses 20.
	Burst int

	// MaxSources bounds the number of tracked sources; the least recently
	// seen source is evicted when the bound is hit. Zero uses 10000,
	// negative means unlimited.
	MaxSources int

	// CleanupInterval is how often idle sources are swept. Zero or negative
	// uses 5 minutes.
	CleanupInterval time.Duration

	// MaxIdle is how long a source may stay quiet before the sweep drops
	// its bucket. Zero or negative uses 30 minutes.
	MaxIdle time.Duration

	Logger *slog.Logger
	Clock  clockwork.Clock
}

// FloodGuard throttles event recording per source using token buckets with
// LRU eviction, so a single hostile client cannot churn the audit trail or
// grow the tracked-source map without bound.
type FloodGuard struct {
	mu      sync.Mutex
	sources map[string]*list.Element // source -> element in lru
	lru     *list.List               // of *guardEntry, front = most recent

	eventsPerSecond int
	burst           int
	maxSources      int
	cleanupInterval time.Duration
	maxIdle         time.Duration

	logger *slog.Logger
	clock  clockwork.Clock

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	totalEvictions int64
	totalCleanups  int64
}

// NewFloodGuard creates a flood guard. The guard is inert until Start is
// called; Allow works either way, only the idle sweep needs the lifecycle.
func NewFloodGuard(cfg GuardConfig) *FloodGuard {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.EventsPerSecond <= 0 {
		cfg.EventsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.MaxSources == 0 {
		cfg.MaxSources = 10000
	} else if cfg.MaxSources < 0 {
		cfg.MaxSources = 0
		cfg.Logger.Warn("Flood guard source tracking is unbounded; memory grows with distinct sources")
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 30 * time.Minute
	}

	return &FloodGuard{
		sources:         make(map[string]*list.Element),
		lru:             list.New(),
		eventsPerSecond: cfg.EventsPerSecond,
		burst:           cfg.Burst,
		maxSources:      cfg.MaxSources,
		cleanupInterval: cfg.CleanupInterval,
		maxIdle:         cfg.MaxIdle,
		logger:          cfg.Logger,
		clock:           cfg.Clock,
		stop:            make(chan struct{}),
	}
}

// Allow reports whether the source may record another event now.
func (g *FloodGuard) Allow(source string) bool {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if elem, exists := g.sources[source]; exists {
		g.lru.MoveToFront(elem)
		entry := elem.Value.(*guardEntry)
		entry.lastSeen = now
		return entry.limiter.AllowN(now, 1)
	}

	if g.maxSources > 0 && len(g.sources) >= g.maxSources {
		g.evictLRU()
	}

	entry := &guardEntry{
		source:   source,
		limiter:  rate.NewLimiter(rate.Limit(g.eventsPerSecond), g.burst),
		lastSeen: now,
	}
	g.sources[source] = g.lru.PushFront(entry)

	return entry.limiter.AllowN(now, 1)
}

// evictLRU removes the least recently seen source.
// Must be called with the mutex held.
func (g *FloodGuard) evictLRU() {
	elem := g.lru.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*guardEntry)
	delete(g.sources, entry.source)
	g.lru.Remove(elem)
	g.totalEvictions++

	g.logger.Debug("Flood guard LRU eviction",
		"source", entry.source,
		"total_evictions", g.totalEvictions,
		"tracked_sources", len(g.sources))
}

// Start launches the background sweep that drops idle sources. Calling
// Start more than once has no effect.
func (g *FloodGuard) Start() {
	g.startOnce.Do(func() {
		go g.sweepLoop()
	})
}

// sweepLoop periodically removes idle sources until Stop is called.
func (g *FloodGuard) sweepLoop() {
	ticker := g.clock.NewTicker(g.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			g.Cleanup()
		case <-g.stop:
			return
		}
	}
}

// Cleanup removes sources that have been idle longer than MaxIdle and
// returns how many were removed.
func (g *FloodGuard) Cleanup() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	removed := 0

	var next *list.Element
	for elem := g.lru.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*guardEntry)

		if now.Sub(entry.lastSeen) > g.maxIdle {
			delete(g.sources, entry.source)
			g.lru.Remove(elem)
			removed++
		}
	}

	if removed > 0 {
		g.totalCleanups++
		g.logger.Debug("Flood guard cleanup completed",
			"removed", removed,
			"remaining", len(g.sources),
			"total_cleanups", g.totalCleanups)
	}
	return removed
}

// Stop halts the background sweep. Safe to call multiple times.
func (g *FloodGuard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})
}

// GuardStats holds flood guard statistics for monitoring.
type GuardStats struct {
	TrackedSources int
	MaxSources     int
	TotalEvictions int64
	TotalCleanups  int64
}

// Stats returns current flood guard statistics.
func (g *FloodGuard) Stats() GuardStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return GuardStats{
		TrackedSources: len(g.sources),
		MaxSources:     g.maxSources,
		TotalEvictions: g.totalEvictions,
		TotalCleanups:  g.totalCleanups,
	}
}
