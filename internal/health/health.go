// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eval-platform/backend/internal/server/httpjson"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTP serves /healthz and /readyz. Liveness never touches dependencies;
// readiness pings the database.
type HTTP struct {
	db Pinger
}

// NewHTTP returns the health handler. db may be nil to report ready
// unconditionally.
func NewHTTP(db Pinger) *HTTP {
	return &HTTP{db: db}
}

// Register mounts the probe routes on r.
func (h *HTTP) Register(r chi.Router) {
	r.Get("/healthz", h.live)
	r.Get("/readyz", h.ready)
}

func (h *HTTP) live(w http.ResponseWriter, _ *http.Request) {
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTP) ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			httpjson.Respond(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ready"})
}
