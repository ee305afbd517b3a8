// Package authcore implements the authentication security core for a web
// application: login attempt throttling with lockout, session lifecycle
// management with IP pinning, one-time CSRF tokens, request rate limiting,
// and a bounded security event sink.
//
// The Service type wires the five components together behind one facade
// with a shared clock, logger, and event stream. Credential verification is
// pluggable through the CredentialVerifier interface; a bcrypt-backed
// StaticCredentials implementation ships for small deployments and tests.
//
// All state is in-memory and single-process. Sessions, lockouts, CSRF
// tokens, and rate counters do not survive restarts and are not shared
// across instances; horizontally scaled deployments need sticky routing.
//
// Key Features:
//   - Lockout after repeated failed logins (5 failures in 5 minutes locks
//     for 15 minutes) with lazy reset
//   - Sessions pinned to the login IP with a 24h inactivity timeout and a
//     per-user cap that evicts the oldest session
//   - Single-use CSRF tokens with compare-and-delete validation
//   - Fixed-window rate limiting with X-RateLimit response headers and
//     bypass paths
//   - Append-only, capacity-bounded security event log with flood guarding
//   - HTTP middleware for rate limiting, security headers, request IDs,
//     and request metrics
//   - OpenTelemetry instrumentation, disabled by default
//
// Example usage:
//
//	creds := authcore.NewStaticCredentials()
//	creds.SetPassword("alice@example.com", "s3cret!Pass")
//
//	svc, err := authcore.New(&authcore.Config{
//	    ServerURL: "https://app.example.com",
//	    RateLimit: authcore.RateLimitConfig{
//	        BypassPaths: []string{"/healthz", "/static"},
//	    },
//	}, creds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Start()
//	defer svc.Stop()
//
//	mux := http.NewServeMux()
//	// ... register handlers ...
//	http.ListenAndServe(":8080", svc.Handler(mux))
package authcore
