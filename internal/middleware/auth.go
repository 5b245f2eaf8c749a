// Package middleware provides Gin HTTP middleware for admin authentication,
// rate limiting, security headers, request metrics, and audit logging.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RequestID → Metrics → RateLimit → Auth → Audit → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attacks before any
// bcrypt or signature work. Auth enforces the admin gate; audit runs last so
// only requests that reached a handler are recorded.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/auth"
)

// Context keys set by AdminAuthMiddleware.
const (
	// AuthMethodKey records how the request authenticated: "session" or "master".
	AuthMethodKey = "auth_method"
)

// AdminAuthMiddleware gates admin endpoints. It accepts either a session
// token from a prior login or the master key itself, both as a Bearer
// credential. Session verification is attempted first because it is a pure
// signature check; master verification may involve bcrypt.
//
// An aborted request never reaches its handler, so no admin operation can
// produce a side effect without this check passing first.
func AdminAuthMiddleware(sessions *auth.SessionIssuer, master *auth.MasterVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := bearerCredential(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or malformed authorization header",
			})
			return
		}

		if _, err := sessions.Verify(credential); err == nil {
			c.Set(AuthMethodKey, "session")
			c.Next()
			return
		}

		if master.Verify(credential) {
			c.Set(AuthMethodKey, "master")
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
		})
	}
}

// bearerCredential extracts the credential from the Authorization header.
func bearerCredential(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	credential := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if credential == "" {
		return "", false
	}

	return credential, true
}
