// session.go handles admin session token creation, signing, and verification
// using a shared secret. Sessions exist so the admin panel does not have to
// hold the master key in memory for its whole lifetime: one successful login
// exchanges the master key for a short-lived HS256 token.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned for tokens that fail signature or claim checks.
var ErrInvalidSession = errors.New("invalid session token")

// SessionIssuer issues and verifies admin session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// SessionClaims is the JWT claim set for an admin session.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionIssuer creates an issuer with the configured signing secret.
// When secret is empty a random one is generated and a warning logged:
// sessions then do not survive process restarts.
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err == nil {
			secret = hex.EncodeToString(buf)
		} else {
			secret = fmt.Sprintf("fallback-%d", time.Now().UnixNano())
		}
		slog.Warn("auth.session_secret not set; using a generated secret, sessions will not persist across restarts")
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed admin session token.
func (s *SessionIssuer) Issue(now time.Time) (string, error) {
	claims := SessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "admin-panel",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a session token.
func (s *SessionIssuer) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if claims.Role != "admin" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
