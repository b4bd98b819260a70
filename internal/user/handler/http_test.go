package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/principal"
	"eval-platform/backend/internal/user/domain"
)

type fakeUsers struct {
	byID map[string]*domain.User
	err  error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func router(users *fakeUsers, p *principal.Principal) http.Handler {
	l := logrus.New()
	l.SetOutput(io.Discard)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p != nil {
				req = req.WithContext(principal.WithContext(req.Context(), *p))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHTTP(users, l).Register(r)
	return r
}

func getMe(h http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	return rr
}

func TestMe(t *testing.T) {
	users := &fakeUsers{byID: map[string]*domain.User{
		"u1": {ID: "u1", Email: "u1@example.com", Name: "User One", Status: domain.UserStatusActive},
	}}
	rr := getMe(router(users, &principal.Principal{UserID: "u1"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp profileResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "u1" || resp.Email != "u1@example.com" || resp.Status != "active" {
		t.Errorf("profile: %+v", resp)
	}
}

func TestMe_UnauthenticatedAndMissing(t *testing.T) {
	users := &fakeUsers{byID: map[string]*domain.User{}}

	if rr := getMe(router(users, nil)); rr.Code != http.StatusUnauthorized {
		t.Errorf("no principal: got %d, want 401", rr.Code)
	}
	if rr := getMe(router(users, &principal.Principal{UserID: "gone"})); rr.Code != http.StatusNotFound {
		t.Errorf("missing user: got %d, want 404", rr.Code)
	}
}

func TestMe_LookupFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("db down")}
	rr := getMe(router(users, &principal.Principal{UserID: "u1"}))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", rr.Code)
	}
}
