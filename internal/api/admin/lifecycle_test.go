package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ajinzmodzhp/admin-panel2/internal/keygen"
	"github.com/ajinzmodzhp/admin-panel2/internal/licensing"
)

// Walks a fresh batch through its first validations over one shared store:
// generate three dated keys, claim one from a device, watch a second device
// bounce off the binding, then check the counters stats reports.
func TestKeyLifecycle_GenerateValidateStats(t *testing.T) {
	store := newFakeStore()
	keysRouter := newKeysRouter(store, keygen.Config{})
	statsRouter := newStatsRouter(store, 20)
	service := licensing.NewService(store, store)

	w := doJSON(keysRouter, http.MethodPost, "/keys/generate", `{"count":3,"expiration":"1D"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	created, _ := getJSON(w)["created"].([]interface{})
	if len(created) != 3 {
		t.Fatalf("len(created) = %d, want 3", len(created))
	}
	first, _ := created[0].(map[string]interface{})
	token, _ := first["token"].(string)
	if token == "" {
		t.Fatal("created key has no token")
	}

	res, err := service.Validate(context.Background(), token, "device-x")
	if err != nil {
		t.Fatalf("first validation: %v", err)
	}
	if res.Outcome != licensing.OutcomeClaimed {
		t.Fatalf("first validation outcome = %s, want %s", res.Outcome, licensing.OutcomeClaimed)
	}

	res, err = service.Validate(context.Background(), token, "device-y")
	if err != nil {
		t.Fatalf("second validation: %v", err)
	}
	if res.Outcome != licensing.OutcomeDeviceMismatch {
		t.Fatalf("second validation outcome = %s, want %s", res.Outcome, licensing.OutcomeDeviceMismatch)
	}

	w = httptest.NewRecorder()
	statsRouter.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	stats, _ := getJSON(w)["stats"].(map[string]interface{})
	if stats == nil {
		t.Fatal("response missing 'stats' key")
	}
	want := map[string]float64{"total": 3, "active": 3, "used": 1, "expired": 0}
	for field, n := range want {
		if stats[field] != n {
			t.Errorf("stats %s = %v, want %v", field, stats[field], n)
		}
	}
}
