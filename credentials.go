package authcore

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a cleartext password against an account's stored
// credential. The service consults it only after the attempt tracker confirms
// the identifier is not locked out.
//
// Implementations must return a non-nil error for unknown identifiers as well
// as wrong passwords, and should take comparable time in both cases so
// response timing does not reveal whether an account exists.
type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, password string) error
}

// dummyHash is a bcrypt hash of an unguessable throwaway value. Comparisons
// against it for unknown identifiers keep verification time uniform.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("authcore-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return hash
}()

// StaticCredentials is a CredentialVerifier backed by an in-memory map of
// bcrypt hashes. It suits small deployments, demos, and tests; larger
// deployments implement CredentialVerifier against their user store.
type StaticCredentials struct {
	mu     sync.RWMutex
	hashes map[string][]byte
}

// NewStaticCredentials creates an empty credential set.
func NewStaticCredentials() *StaticCredentials {
	return &StaticCredentials{hashes: make(map[string][]byte)}
}

// SetPassword hashes and stores the password for the identifier, replacing
// any previous credential.
func (c *StaticCredentials) SetPassword(identifier, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	c.mu.Lock()
	c.hashes[identifier] = hash
	c.mu.Unlock()
	return nil
}

// SetPasswordHash stores a pre-computed bcrypt hash for the identifier.
// Deployments that keep hashes in configuration use this to avoid handling
// cleartext at startup.
func (c *StaticCredentials) SetPasswordHash(identifier, hash string) {
	c.mu.Lock()
	c.hashes[identifier] = []byte(hash)
	c.mu.Unlock()
}

// Remove deletes the identifier's credential.
func (c *StaticCredentials) Remove(identifier string) {
	c.mu.Lock()
	delete(c.hashes, identifier)
	c.mu.Unlock()
}

// Verify implements CredentialVerifier.
func (c *StaticCredentials) Verify(_ context.Context, identifier, password string) error {
	c.mu.RLock()
	hash, ok := c.hashes[identifier]
	c.mu.RUnlock()

	// ALWAYS perform the bcrypt comparison, even for unknown identifiers.
	// This prevents timing attacks based on whether the comparison is skipped.
	compareAgainst := hash
	if !ok {
		compareAgainst = dummyHash
	}
	err := bcrypt.CompareHashAndPassword(compareAgainst, []byte(password))

	if !ok || err != nil {
		return fmt.Errorf("credential verification failed")
	}
	return nil
}
