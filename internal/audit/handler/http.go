// Package handler exposes the caller's security event history over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/audit/domain"
	"eval-platform/backend/internal/principal"
	"eval-platform/backend/internal/server/httpjson"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventLister is the slice of the audit repository the handler needs.
type EventLister interface {
	ListEventsByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.SecurityEvent, error)
}

// HTTP serves the /security/events route.
type HTTP struct {
	events EventLister
	log    logrus.FieldLogger
}

// NewHTTP returns the audit HTTP handler.
func NewHTTP(events EventLister, log logrus.FieldLogger) *HTTP {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTP{events: events, log: log}
}

// Register mounts the audit routes on r.
func (h *HTTP) Register(r chi.Router) {
	r.Get("/security/events", h.list)
}

type eventResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	limit := queryInt(r, "limit", defaultEventLimit)
	if limit <= 0 || limit > maxEventLimit {
		limit = defaultEventLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, err := h.events.ListEventsByUser(r.Context(), p.UserID, int32(limit), int32(offset))
	if err != nil {
		h.log.WithError(err).Error("audit: event list failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:          e.ID,
			SessionID:   e.SessionID,
			EventType:   e.EventType,
			Description: e.Description,
			IPAddress:   e.IPAddress,
			CreatedAt:   e.CreatedAt,
		})
	}
	httpjson.Respond(w, http.StatusOK, map[string]any{"events": out})
}

func queryInt(r *http.Request, key string, fallback int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
