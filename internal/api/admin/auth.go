// Package admin implements the administrative HTTP handlers for the license
// key backend. Every handler in this package sits behind the admin auth
// middleware (see internal/middleware/auth.go), unlike the client validation
// handler in the sibling client package, which is intentionally
// unauthenticated so installed applications can validate their keys.
package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/auth"
)

// AuthHandlers handles admin login.
type AuthHandlers struct {
	master   *auth.MasterVerifier
	sessions *auth.SessionIssuer
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(master *auth.MasterVerifier, sessions *auth.SessionIssuer) *AuthHandlers {
	return &AuthHandlers{master: master, sessions: sessions}
}

// LoginRequest carries the master key presented by the admin panel.
type LoginRequest struct {
	Master string `json:"master" binding:"required"`
}

// LoginResponse returns a short-lived session token so the panel does not
// need to retain the master key.
type LoginResponse struct {
	OK        bool   `json:"ok"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// LoginHandler verifies the master key and issues a session token.
// POST /api/v1/auth/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "master key is required"})
			return
		}

		if !h.master.Verify(req.Master) {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Wrong master key"})
			return
		}

		token, err := h.sessions.Issue(time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to create session"})
			return
		}

		c.JSON(http.StatusOK, LoginResponse{
			OK:        true,
			Token:     token,
			ExpiresIn: int64(h.sessions.TTL().Seconds()),
		})
	}
}
