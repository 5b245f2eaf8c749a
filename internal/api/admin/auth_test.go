package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajinzmodzhp/admin-panel2/internal/auth"
)

func newLoginRouter() (*gin.Engine, *auth.SessionIssuer) {
	sessions := auth.NewSessionIssuer("test-session-secret", time.Hour)
	master := auth.NewMasterVerifier("test-master-key", "")
	h := NewAuthHandlers(master, sessions)

	r := gin.New()
	r.POST("/auth/login", h.LoginHandler())
	return r, sessions
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginHandler_Success(t *testing.T) {
	r, sessions := newLoginRouter()

	w := postLogin(r, `{"master":"test-master-key"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}

	resp := getJSON(w)
	if resp["ok"] != true {
		t.Error("response ok = false, want true")
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("response missing token")
	}
	if _, err := sessions.Verify(token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}
	if resp["expires_in"] != float64(3600) {
		t.Errorf("expires_in = %v, want 3600", resp["expires_in"])
	}
}

func TestLoginHandler_WrongKey(t *testing.T) {
	r, _ := newLoginRouter()

	w := postLogin(r, `{"master":"wrong-key"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLoginHandler_MissingBody(t *testing.T) {
	r, _ := newLoginRouter()

	for _, body := range []string{``, `{}`, `{"master":""}`, `not-json`} {
		w := postLogin(r, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
