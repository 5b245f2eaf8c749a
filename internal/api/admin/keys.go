// keys.go implements the admin key management endpoints: batch generation,
// listing, and deletion.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/db/models"
	"github.com/ajinzmodzhp/admin-panel2/internal/keygen"
	"github.com/ajinzmodzhp/admin-panel2/internal/licensing"
)

// KeyLister is the read slice of the key store the list endpoint needs.
type KeyLister interface {
	ListAll(ctx context.Context) ([]*models.LicenseKey, error)
}

// KeyHandlers handles key generation, listing, and deletion.
type KeyHandlers struct {
	generator *keygen.Generator
	service   *licensing.Service
	keys      KeyLister
}

// NewKeyHandlers creates a new KeyHandlers instance
func NewKeyHandlers(generator *keygen.Generator, service *licensing.Service, keys KeyLister) *KeyHandlers {
	return &KeyHandlers{generator: generator, service: service, keys: keys}
}

// GenerateRequest asks for a batch of new keys. Count is floored to 1 and
// clamped to the configured maximum; Expiration is an expiry token such as
// "LT", "2H", or "30D".
type GenerateRequest struct {
	Count      int    `json:"count"`
	Expiration string `json:"expiration"`
}

// IssuedKey is one successfully created key in a GenerateResponse.
type IssuedKey struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	Lifetime  bool       `json:"lifetime"`
}

// GenerateResponse reports the batch outcome. Errors lists the requests that
// could not be satisfied; the created keys are kept regardless.
type GenerateResponse struct {
	OK      bool               `json:"ok"`
	Created []IssuedKey        `json:"created"`
	Errors  []keygen.ItemError `json:"errors,omitempty"`
}

// GenerateHandler issues a batch of keys.
// POST /api/v1/keys/generate
func (h *KeyHandlers) GenerateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
			return
		}

		result, err := h.generator.Generate(c.Request.Context(), req.Count, req.Expiration)
		if err != nil {
			if errors.Is(err, keygen.ErrInvalidExpiry) {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "key generation failed"})
			return
		}

		resp := GenerateResponse{OK: true, Created: make([]IssuedKey, 0, len(result.Created))}
		for _, key := range result.Created {
			resp.Created = append(resp.Created, IssuedKey{
				Token:     key.Token,
				ExpiresAt: key.ExpiresAt,
				Lifetime:  key.Lifetime,
			})
		}
		resp.Errors = result.Failed

		c.JSON(http.StatusOK, resp)
	}
}

// ListHandler returns all live keys, newest first.
// GET /api/v1/keys
func (h *KeyHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := h.keys.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list keys"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "keys": keys})
	}
}

// DeleteHandler tombstones a key addressed by token or id.
// DELETE /api/v1/keys/:ref
func (h *KeyHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := c.Param("ref")
		if ref == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "key reference is required"})
			return
		}

		deleted, err := h.service.Delete(c.Request.Context(), ref)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to delete key"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "key not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
