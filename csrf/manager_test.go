package csrf

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/venuehub/authcore/audit"
	"github.com/venuehub/authcore/security"
)

func newTestManager(t *testing.T, cfg Config) (*Manager, *clockwork.FakeClock, *audit.Log) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := audit.New(audit.Config{Logger: logger, Clock: clock})
	cfg.Clock = clock
	cfg.Logger = logger
	cfg.Events = events
	return New(cfg), clock, events
}

func TestGenerate(t *testing.T) {
	manager, _, _ := newTestManager(t, Config{})

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token := manager.Generate("alice@example.com")
		if token == "" {
			t.Fatal("empty token")
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[token] = struct{}{}
	}
	if got := manager.OutstandingCount(); got != 100 {
		t.Errorf("OutstandingCount = %d, want 100", got)
	}
}

func TestValidate_SingleUse(t *testing.T) {
	manager, _, events := newTestManager(t, Config{})

	token := manager.Generate("alice@example.com")
	if !manager.Validate(token, "alice@example.com") {
		t.Fatal("fresh token rejected")
	}
	if manager.Validate(token, "alice@example.com") {
		t.Fatal("token validated twice")
	}
	if got := manager.OutstandingCount(); got != 0 {
		t.Errorf("OutstandingCount = %d, want 0", got)
	}

	rejections := events.Query(audit.Filter{Type: audit.EventCsrfRejected}, 0)
	if len(rejections) != 1 {
		t.Fatalf("got %d rejection events, want 1", len(rejections))
	}
	if got := rejections[0].Details["reason"]; got != "unknown" {
		t.Errorf("rejection reason = %v, want unknown", got)
	}
}

func TestValidate_ConcurrentSingleUse(t *testing.T) {
	manager, _, _ := newTestManager(t, Config{})

	token := manager.Generate("alice@example.com")

	const goroutines = 50
	var successes atomic.Int32
	done := make(chan struct{})
	for g := 0; g < goroutines; g++ {
		go func() {
			if manager.Validate(token, "alice@example.com") {
				successes.Add(1)
			}
			done <- struct{}{}
		}()
	}
	for g := 0; g < goroutines; g++ {
		<-done
	}

	if got := successes.Load(); got != 1 {
		t.Fatalf("%d of %d concurrent validations succeeded, want exactly 1", got, goroutines)
	}
}

func TestValidate_Expiry(t *testing.T) {
	manager, clock, events := newTestManager(t, Config{})

	token := manager.Generate("alice@example.com")

	// Exactly at the lifetime the token is still spendable.
	clock.Advance(DefaultLifetime)
	if !manager.Validate(token, "alice@example.com") {
		t.Fatal("token rejected at exactly its lifetime")
	}

	stale := manager.Generate("alice@example.com")
	clock.Advance(DefaultLifetime + time.Second)
	if manager.Validate(stale, "alice@example.com") {
		t.Fatal("expired token validated")
	}
	if got := manager.OutstandingCount(); got != 0 {
		t.Errorf("OutstandingCount = %d, want 0", got)
	}

	rejections := events.Query(audit.Filter{Type: audit.EventCsrfRejected}, 0)
	if len(rejections) != 1 {
		t.Fatalf("got %d rejection events, want 1", len(rejections))
	}
	if got := rejections[0].Details["reason"]; got != "expired" {
		t.Errorf("rejection reason = %v, want expired", got)
	}
}

func TestValidate_WrongUserKeepsToken(t *testing.T) {
	manager, _, events := newTestManager(t, Config{})

	token := manager.Generate("alice@example.com")

	if manager.Validate(token, "mallory@example.com") {
		t.Fatal("token validated for the wrong user")
	}
	if got := manager.OutstandingCount(); got != 1 {
		t.Fatalf("OutstandingCount = %d after wrong-user attempt, want 1", got)
	}
	// The rightful owner can still spend it.
	if !manager.Validate(token, "alice@example.com") {
		t.Fatal("owner could not spend token after wrong-user attempt")
	}

	mismatches := events.Query(audit.Filter{Type: audit.EventCsrfUserMismatch}, 0)
	if len(mismatches) != 1 {
		t.Fatalf("got %d mismatch events, want 1", len(mismatches))
	}
	ev := mismatches[0]
	if ev.UserID != "mallory@example.com" {
		t.Errorf("event UserID = %q, want the presenting user", ev.UserID)
	}
	if got := ev.Details["issued_to_hash"]; got != security.HashForLogging("alice@example.com") {
		t.Errorf("issued_to_hash = %v, want hash of the owner", got)
	}
	if got := ev.Details["token_prefix"]; got != token[:8] {
		t.Errorf("token_prefix = %v, want %q", got, token[:8])
	}
}

func TestCleanup(t *testing.T) {
	manager, clock, _ := newTestManager(t, Config{})

	manager.Generate("alice@example.com")
	manager.Generate("bob@example.com")
	clock.Advance(30 * time.Minute)
	fresh := manager.Generate("carol@example.com")
	clock.Advance(31 * time.Minute)

	if got := manager.Cleanup(); got != 2 {
		t.Fatalf("Cleanup = %d, want 2", got)
	}
	if got := manager.Cleanup(); got != 0 {
		t.Errorf("second Cleanup = %d, want 0", got)
	}
	if got := manager.OutstandingCount(); got != 1 {
		t.Errorf("OutstandingCount = %d, want 1", got)
	}
	if !manager.Validate(fresh, "carol@example.com") {
		t.Error("unexpired token removed by cleanup")
	}
}

func TestSweepLoop(t *testing.T) {
	manager, clock, _ := newTestManager(t, Config{
		Lifetime:      time.Minute,
		SweepInterval: time.Minute,
	})

	manager.Generate("alice@example.com")
	manager.Start()
	defer manager.Stop()

	clock.BlockUntil(1)
	clock.Advance(3 * time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for manager.OutstandingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweep did not reap the expired token")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartStop_Idempotent(t *testing.T) {
	manager, _, _ := newTestManager(t, Config{})

	manager.Start()
	manager.Start()
	manager.Stop()
	manager.Stop()
}
