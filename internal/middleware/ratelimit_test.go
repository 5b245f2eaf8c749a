package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// ---------------------------------------------------------------------------
// Config constructors
// ---------------------------------------------------------------------------

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want 60", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 10 {
		t.Errorf("BurstSize = %d, want 10", cfg.BurstSize)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestLoginRateLimitConfig(t *testing.T) {
	cfg := LoginRateLimitConfig()
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want 10", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 5 {
		t.Errorf("BurstSize = %d, want 5", cfg.BurstSize)
	}
}

// ---------------------------------------------------------------------------
// RateLimiter.Allow
// ---------------------------------------------------------------------------

func newTestLimiter(rpm, burst int) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Hour, // Don't clean up during tests
	})
}

func TestRateLimiter_NewClientGetsFullBurst(t *testing.T) {
	rl := newTestLimiter(60, 5)
	defer rl.Stop()

	if !rl.Allow("client-a") {
		t.Error("Allow() = false for new client, want true")
	}
}

func TestRateLimiter_AllowsUpToBurstSize(t *testing.T) {
	burst := 3
	rl := newTestLimiter(1, burst) // near-zero refill during the test
	defer rl.Stop()

	key := "burst-test"
	for i := 0; i < burst; i++ {
		if !rl.Allow(key) {
			t.Fatalf("Allow() = false on request %d of %d, want true", i+1, burst)
		}
	}
	if rl.Allow(key) {
		t.Error("Allow() = true beyond burst size, want false")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(1, 1)
	defer rl.Stop()

	if !rl.Allow("client-a") {
		t.Fatal("Allow(client-a) = false, want true")
	}
	if rl.Allow("client-a") {
		t.Error("Allow(client-a) = true after burst, want false")
	}
	if !rl.Allow("client-b") {
		t.Error("Allow(client-b) = false for fresh client, want true")
	}
}

func TestRateLimiter_RemainingTokens(t *testing.T) {
	rl := newTestLimiter(1, 5)
	defer rl.Stop()

	if got := rl.RemainingTokens("unseen"); got != 5 {
		t.Errorf("RemainingTokens(unseen) = %d, want 5", got)
	}

	rl.Allow("seen")
	if got := rl.RemainingTokens("seen"); got != 4 {
		t.Errorf("RemainingTokens(seen) = %d, want 4", got)
	}
}

// ---------------------------------------------------------------------------
// RateLimitMiddleware
// ---------------------------------------------------------------------------

func newRateLimitRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware_AllowsWithinLimit(t *testing.T) {
	rl := newTestLimiter(60, 5)
	defer rl.Stop()
	r := newRateLimitRouter(rl)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "60" {
		t.Errorf("X-RateLimit-Limit = %q, want 60", w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitMiddleware_RejectsOverLimit(t *testing.T) {
	rl := newTestLimiter(1, 2)
	defer rl.Stop()
	r := newRateLimitRouter(rl)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", last.Header().Get("Retry-After"))
	}
}
