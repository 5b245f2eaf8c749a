// stats.go implements the admin dashboard endpoints: aggregate key counts and
// the recent audit event feed.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/licensing"
)

// StatsHandlers serves aggregate statistics and recent events. Both endpoints
// are read-only: every call reflects current store state, nothing is cached.
type StatsHandlers struct {
	service      *licensing.Service
	recentEvents int
}

// NewStatsHandlers creates a new StatsHandlers instance. recentEvents is the
// number of events returned by the events endpoint.
func NewStatsHandlers(service *licensing.Service, recentEvents int) *StatsHandlers {
	if recentEvents <= 0 {
		recentEvents = 20
	}
	return &StatsHandlers{service: service, recentEvents: recentEvents}
}

// StatsHandler returns aggregate key counts.
// GET /api/v1/stats
func (h *StatsHandlers) StatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := h.service.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to aggregate stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats})
	}
}

// EventsHandler returns the most recent audit events, newest first.
// GET /api/v1/events
func (h *StatsHandlers) EventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := h.service.RecentEvents(c.Request.Context(), h.recentEvents)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list events"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "events": events})
	}
}
