// Package auth provides the admin authentication primitives: master key
// verification and short-lived session token creation/verification.
// The core licensing packages never see the master key; the HTTP middleware
// (internal/middleware/auth.go) performs the check before any admin operation
// executes, so no mutation can happen without prior authorization.
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// MasterVerifier checks presented master keys against the configured secret.
// Exactly one of the two construction modes is used: plaintext comparison
// (constant time) or bcrypt hash comparison.
type MasterVerifier struct {
	key  string
	hash string
}

// NewMasterVerifier creates a verifier from the configured key or bcrypt hash.
// When both are set the hash wins; config validation rejects that case anyway.
func NewMasterVerifier(key, hash string) *MasterVerifier {
	return &MasterVerifier{key: key, hash: hash}
}

// Verify reports whether the presented value is the master key.
func (m *MasterVerifier) Verify(presented string) bool {
	if presented == "" {
		return false
	}
	if m.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(m.hash), []byte(presented)) == nil
	}
	if m.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(m.key), []byte(presented)) == 1
}
