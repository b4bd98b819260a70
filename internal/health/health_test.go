package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(context.Context) error { return f.err }

func get(h *HTTP, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestLiveness(t *testing.T) {
	if rr := get(NewHTTP(&fakePinger{err: errors.New("down")}), "/healthz"); rr.Code != http.StatusOK {
		t.Errorf("liveness must not depend on the database: got %d", rr.Code)
	}
}

func TestReadiness(t *testing.T) {
	p := &fakePinger{}
	if rr := get(NewHTTP(p), "/readyz"); rr.Code != http.StatusOK {
		t.Errorf("ready: got %d", rr.Code)
	}

	p.err = errors.New("connection refused")
	if rr := get(NewHTTP(p), "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("db down: got %d, want 503", rr.Code)
	}

	if rr := get(NewHTTP(nil), "/readyz"); rr.Code != http.StatusOK {
		t.Errorf("nil pinger: got %d", rr.Code)
	}
}
