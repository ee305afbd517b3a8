// Package session manages server-held login sessions: creation with
// unguessable identifiers, validation with IP pinning and an inactivity
// timeout, revocation, and a per-user session cap.
//
// A session is a record binding a user to the client (IP and user agent)
// that logged in. Sessions move through exactly one lifecycle: active until
// revoked, expired, or evicted — never back. Validation of a session
// presented from a different IP address than the one it was created with
// revokes it on the spot and records a suspicious_request security event;
// there is no warning mode. Deployments whose users sit behind aggressively
// rotating NAT will see legitimate sessions revoked by this policy, and the
// recorded events carry network classifications for both addresses so
// operators can measure how often that happens.
//
// Each user holds at most a configured number of concurrent sessions; a
// login beyond the cap silently evicts that user's oldest session by
// creation time.
//
// Expired sessions are removed lazily during validation and in bulk by the
// background sweep:
//
//	manager := session.New(session.Config{Events: sink})
//	manager.Start()
//	defer manager.Stop()
//
//	s := manager.Create("user-1", "203.0.113.7", "Mozilla/5.0")
//	if manager.Validate(s.ID, "203.0.113.7") == nil {
//	    // re-authenticate
//	}
//
// Returned Session values are snapshots; mutating them has no effect on the
// manager's state.
package session
