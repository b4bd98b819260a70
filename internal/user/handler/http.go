// Package handler exposes the authenticated user's profile over HTTP.
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
	"eval-platform/backend/internal/user/domain"
)

// UserGetter is the slice of the user repository the handler needs.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// HTTP serves the /me route.
type HTTP struct {
	users UserGetter
	log   logrus.FieldLogger
}

// NewHTTP returns the user HTTP handler.
func NewHTTP(users UserGetter, log logrus.FieldLogger) *HTTP {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTP{users: users, log: log}
}

// Register mounts the profile routes on r.
func (h *HTTP) Register(r chi.Router) {
	r.Get("/me", h.me)
}

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *HTTP) me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	user, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		h.log.WithError(err).Error("user: profile lookup failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if user == nil {
		httpjson.RespondError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}

	httpjson.Respond(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	})
}
