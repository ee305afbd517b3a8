package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// SessionIDBytes is the entropy of a generated session identifier.
	// 32 bytes (256 bits) is double the 128-bit minimum required for an
	// unguessable identifier.
	SessionIDBytes = 32

	// SessionIDLength is the fixed length of a session identifier string:
	// lowercase hex, two characters per byte.
	SessionIDLength = SessionIDBytes * 2
)

// GenerateSessionID returns a cryptographically secure session identifier
// rendered as fixed-length lowercase hex.
//
// The function panics if the system's random number generator fails, which
// indicates a critical system-level security failure. A process that cannot
// produce unguessable identifiers must not keep serving logins.
func GenerateSessionID() string {
	b := make([]byte, SessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand.Read failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// HashForLogging creates a SHA256 hash of sensitive data for logging.
// The digest is truncated to 16 hex characters: enough to correlate log
// lines for one identifier, useless for recovering the identifier itself.
func HashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
