// Package throttle tracks failed login attempts per identifier and locks
// identifiers out after repeated failures.
//
// An identifier (normally an email or username, but any stable string works)
// accumulates a failure count inside a rolling window. Reaching the maximum
// within the window locks the identifier for a fixed duration; the lock is
// released lazily on the next check after it expires, or immediately by a
// successful login. Callers are expected to consult IsLocked before invoking
// their credential verifier, so a locked identifier never reaches password
// checking at all.
//
// The tracker holds no timers of its own: expired state is reaped lazily and
// by Cleanup, which callers may schedule if abandoned identifiers are a
// memory concern.
package throttle
