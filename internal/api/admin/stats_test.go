package admin

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/db/models"
	"github.com/ajinzmodzhp/admin-panel2/internal/licensing"
)

func newStatsRouter(store *fakeStore, recentEvents int) *gin.Engine {
	service := licensing.NewService(store, store)
	h := NewStatsHandlers(service, recentEvents)

	r := gin.New()
	r.GET("/stats", h.StatsHandler())
	r.GET("/events", h.EventsHandler())
	return r
}

func TestStatsHandler_Success(t *testing.T) {
	store := newFakeStore()
	past := time.Now().UTC().Add(-time.Minute)
	device := "device-1"
	store.keys["k1"] = &models.LicenseKey{ID: "k1", Token: "KA-AAAAA", Lifetime: true}
	store.keys["k2"] = &models.LicenseKey{ID: "k2", Token: "KA-BBBBB", ExpiresAt: &past}
	store.keys["k3"] = &models.LicenseKey{ID: "k3", Token: "KA-CCCCC", Lifetime: true, DeviceID: &device, ClaimedAt: &past}
	r := newStatsRouter(store, 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	stats, _ := resp["stats"].(map[string]interface{})
	if stats == nil {
		t.Fatal("response missing 'stats' key")
	}
	if stats["total"] != float64(3) {
		t.Errorf("total = %v, want 3", stats["total"])
	}
	if stats["active"] != float64(2) {
		t.Errorf("active = %v, want 2", stats["active"])
	}
	if stats["used"] != float64(1) {
		t.Errorf("used = %v, want 1", stats["used"])
	}
	if stats["expired"] != float64(1) {
		t.Errorf("expired = %v, want 1", stats["expired"])
	}
}

func TestStatsHandler_StoreError(t *testing.T) {
	store := newFakeStore()
	store.statsErr = errors.New("db down")
	r := newStatsRouter(store, 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestEventsHandler_NewestFirstWithLimit(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	for i, kind := range []string{models.EventCreated, models.EventClaimed, models.EventRejectedMismatch} {
		keyID := "k1"
		store.events = append(store.events, &models.KeyEvent{
			ID: "ev-" + kind, KeyID: &keyID, Token: "KA-AAAAA", Kind: kind,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
	}
	r := newStatsRouter(store, 2)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	events, _ := resp["events"].([]interface{})
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	first, _ := events[0].(map[string]interface{})
	if first["kind"] != models.EventRejectedMismatch {
		t.Errorf("events[0].kind = %v, want %s", first["kind"], models.EventRejectedMismatch)
	}
}

func TestEventsHandler_Empty(t *testing.T) {
	store := newFakeStore()
	r := newStatsRouter(store, 20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := getJSON(w)
	events, _ := resp["events"].([]interface{})
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}
