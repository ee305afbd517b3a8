// Package audit provides the in-memory security event sink for authcore.
//
// The sink is a bounded, append-only trail of security-relevant decisions:
// lockouts, IP mismatches, rate-limit breaches, CSRF rejections, and session
// lifecycle changes. It is a diagnostic aid, not a system of record — the
// log is capped (oldest entries dropped first) and lost on process exit.
// Every recorded event is also mirrored to structured logging with hashed
// user identifiers, so an external log pipeline can retain what the
// in-memory cap cannot.
//
// Recording never fails and never blocks the calling operation. A flood
// guard (token buckets per event source with LRU eviction) keeps a hostile
// client from churning the trail faster than an operator can read it;
// guarded drops are counted, not propagated.
//
// # Example
//
//	guard := audit.NewFloodGuard(audit.GuardConfig{})
//	log := audit.New(audit.Config{Guard: guard})
//	guard.Start()
//	defer guard.Stop()
//
//	log.Record(audit.Event{
//	    Type:   audit.EventAuthFailure,
//	    UserID: "alice@example.com",
//	    IP:     "203.0.113.7",
//	})
//
//	recent := log.Query(audit.Filter{Type: audit.EventAuthFailure}, 50)
package audit
