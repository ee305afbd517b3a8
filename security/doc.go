// Package security provides the shared security primitives used across the
// authcore library: cryptographically secure identifier generation, log-safe
// hashing of sensitive values, client IP extraction and classification,
// security response headers, request ID propagation, and password policy
// validation.
//
// # Identifier generation
//
// Session identifiers come from crypto/rand and are rendered as fixed-length
// lowercase hex. Generation panics if the system CSPRNG fails; there is no
// degraded mode, because a predictable identifier is worse than a crashed
// process.
//
// # Logging sensitive values
//
// User identifiers must never appear raw in logs. HashForLogging produces a
// truncated SHA-256 digest that stays stable for correlation while revealing
// nothing about the original value:
//
//	logger.Warn("account locked",
//	    "identifier_hash", security.HashForLogging(identifier))
//
// # Client IP handling
//
// GetClientIP resolves the caller address behind reverse proxies under an
// explicit trusted-proxy policy, and ClassifyIP labels addresses
// (public/private/loopback/link-local) so IP-change events can distinguish
// carrier NAT churn from genuine anomalies.
package security
