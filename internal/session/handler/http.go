// Package handler exposes session management over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/principal"
	"eval-platform/backend/internal/server/httpjson"
	"eval-platform/backend/internal/server/middleware"
	"eval-platform/backend/internal/session/domain"
	"eval-platform/backend/internal/session/repository"
)

// SessionService is the slice of the session service the handler needs.
type SessionService interface {
	ListOwn(ctx context.Context, p principal.Principal) ([]*domain.Session, error)
	RevokeOwn(ctx context.Context, p principal.Principal, sessionID, ip string) error
}

// HTTP serves the /sessions routes. All routes require an authenticated
// principal.
type HTTP struct {
	sessions SessionService
	log      logrus.FieldLogger
}

// NewHTTP returns the session HTTP handler.
func NewHTTP(sessions SessionService, log logrus.FieldLogger) *HTTP {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTP{sessions: sessions, log: log}
}

// Register mounts the session routes on r.
func (h *HTTP) Register(r chi.Router) {
	r.Get("/sessions", h.list)
	r.Post("/sessions/{id}/revoke", h.revoke)
}

type sessionResponse struct {
	ID                string    `json:"id"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	IPAddress         string    `json:"ip_address"`
	CreatedAt         time.Time `json:"created_at"`
	LastActivity      time.Time `json:"last_activity"`
	ExpiresAt         time.Time `json:"expires_at"`
	Status            string    `json:"status"`
	Suspicious        bool      `json:"suspicious"`
	Current           bool      `json:"current"`
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	currentID, _ := middleware.GetSessionID(r.Context())

	sessions, err := h.sessions.ListOwn(r.Context(), p)
	if err != nil {
		h.log.WithError(err).Error("sessions: list failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{
			ID:                s.ID,
			DeviceFingerprint: s.DeviceFingerprint,
			IPAddress:         s.IPAddress,
			CreatedAt:         s.CreatedAt,
			LastActivity:      s.LastActivity,
			ExpiresAt:         s.ExpiresAt,
			Status:            string(s.Status),
			Suspicious:        s.Suspicious,
			Current:           s.ID == currentID,
		})
	}
	httpjson.Respond(w, http.StatusOK, map[string]any{"sessions": out})
}

func (h *HTTP) revoke(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		httpjson.RespondError(w, http.StatusBadRequest, errors.New("session id required"))
		return
	}

	err := h.sessions.RevokeOwn(r.Context(), p, id, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, repository.ErrNotFound)
			return
		}
		h.log.WithError(err).Error("sessions: revoke failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}
