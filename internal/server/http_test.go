package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	audithandler "eval-platform/backend/internal/audit/handler"
	"eval-platform/backend/internal/health"
	identityhandler "eval-platform/backend/internal/identity/handler"
	"eval-platform/backend/internal/security"
	"eval-platform/backend/internal/server/middleware"
	sessionhandler "eval-platform/backend/internal/session/handler"
	userhandler "eval-platform/backend/internal/user/handler"
)

func testRouter() http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	gate := middleware.NewGate(security.NewTestTokenProvider(), nil, time.Second, log)
	return NewRouter(Deps{
		Gate:     gate,
		Auth:     identityhandler.NewHTTP(nil, log),
		Sessions: sessionhandler.NewHTTP(nil, log),
		Users:    userhandler.NewHTTP(nil, log),
		Audit:    audithandler.NewHTTP(nil, log),
		Health:   health.NewHTTP(nil),
	})
}

func TestRouter_PublicAndGatedRoutes(t *testing.T) {
	h := testRouter()

	public := []string{"/healthz", "/readyz", "/metrics"}
	for _, path := range public {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", path, rr.Code)
		}
	}

	gated := []struct{ method, path string }{
		{http.MethodGet, "/sessions"},
		{http.MethodGet, "/me"},
		{http.MethodGet, "/security/events"},
		{http.MethodPost, "/sessions/s1/revoke"},
		{http.MethodPost, "/auth/logout"},
	}
	for _, route := range gated {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(route.method, route.path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: got %d, want 401", route.method, route.path, rr.Code)
		}
	}
}

func TestRouter_LoginIsPublic(t *testing.T) {
	h := testRouter()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	// No token required; the empty body fails validation, not authentication.
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}
