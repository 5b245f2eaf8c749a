// Package client implements the unauthenticated client-facing validation
// endpoint. Installed applications call it with their key token and a device
// identifier; the licensing engine decides whether to bind, confirm, or
// reject. Malformed requests are rejected before any store access.
package client

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/licensing"
)

// ValidateHandlers handles key validation requests.
type ValidateHandlers struct {
	service *licensing.Service
}

// NewValidateHandlers creates a new ValidateHandlers instance
func NewValidateHandlers(service *licensing.Service) *ValidateHandlers {
	return &ValidateHandlers{service: service}
}

// ValidateRequest carries the key token and the caller's device identity.
type ValidateRequest struct {
	Key      string `json:"key" binding:"required"`
	DeviceID string `json:"device_id" binding:"required"`
}

// ValidateResponse reports the outcome of the validation state machine.
// Claimed is true only when this request performed the first binding.
type ValidateResponse struct {
	OK      bool   `json:"ok"`
	Outcome string `json:"outcome"`
	Claimed bool   `json:"claimed"`
	Message string `json:"message,omitempty"`
}

// ValidateHandler runs one validation request.
// POST /api/v1/validate
func (h *ValidateHandlers) ValidateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"ok": false, "error": "key and device_id are required",
			})
			return
		}

		result, err := h.service.Validate(c.Request.Context(), req.Key, req.DeviceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok": false, "error": "validation failed",
			})
			return
		}

		status, resp := toResponse(result)
		c.JSON(status, resp)
	}
}

// toResponse maps an engine result to the wire response and HTTP status.
func toResponse(result licensing.Result) (int, ValidateResponse) {
	switch result.Outcome {
	case licensing.OutcomeClaimed:
		return http.StatusOK, ValidateResponse{OK: true, Outcome: string(result.Outcome), Claimed: true}
	case licensing.OutcomeValid:
		return http.StatusOK, ValidateResponse{OK: true, Outcome: string(result.Outcome)}
	case licensing.OutcomeNotFound:
		return http.StatusNotFound, ValidateResponse{Outcome: string(result.Outcome), Message: "key not found"}
	case licensing.OutcomeExpired:
		return http.StatusForbidden, ValidateResponse{Outcome: string(result.Outcome), Message: "key expired"}
	case licensing.OutcomeDeviceMismatch:
		return http.StatusForbidden, ValidateResponse{Outcome: string(result.Outcome), Message: "key already used on another device"}
	default:
		return http.StatusInternalServerError, ValidateResponse{Outcome: string(result.Outcome)}
	}
}
