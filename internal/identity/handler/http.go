// Package handler exposes the authentication flows over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/identity/service"
	"eval-platform/backend/internal/principal"
	"eval-platform/backend/internal/server/httpjson"
	"eval-platform/backend/internal/server/middleware"
	sessionrepo "eval-platform/backend/internal/session/repository"
)

// AuthService is the slice of the auth service the HTTP handler needs.
type AuthService interface {
	Login(ctx context.Context, email, password, deviceFingerprint, ip string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, sessionID, userID, ip string) error
}

// HTTP serves the /auth routes.
type HTTP struct {
	auth     AuthService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewHTTP returns the auth HTTP handler.
func NewHTTP(auth AuthService, log logrus.FieldLogger) *HTTP {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTP{auth: auth, validate: validator.New(), log: log}
}

// RegisterPublic mounts the unauthenticated auth routes on r.
func (h *HTTP) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
}

// RegisterProtected mounts the auth routes that require a verified session.
func (h *HTTP) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.logout)
}

type loginRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	SessionID    string `json:"session_id"`
}

func toTokenResponse(res *service.AuthResult) tokenResponse {
	return tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    res.ExpiresIn,
		SessionID:    res.SessionID,
	}
}

func (h *HTTP) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, errors.New("email and password are required"))
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password, req.DeviceFingerprint, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpjson.RespondError(w, http.StatusUnauthorized, service.ErrInvalidCredentials)
			return
		}
		h.log.WithError(err).Error("auth: login failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpjson.Respond(w, http.StatusOK, toTokenResponse(res))
}

func (h *HTTP) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, errors.New("refresh_token is required"))
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			httpjson.RespondError(w, http.StatusUnauthorized, service.ErrInvalidRefreshToken)
			return
		}
		h.log.WithError(err).Error("auth: refresh failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpjson.Respond(w, http.StatusOK, toTokenResponse(res))
}

func (h *HTTP) logout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok || sessionID == "" {
		httpjson.RespondError(w, http.StatusBadRequest, errors.New("no session bound to token"))
		return
	}

	err := h.auth.Logout(r.Context(), sessionID, p.UserID, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, sessionrepo.ErrNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, sessionrepo.ErrNotFound)
			return
		}
		h.log.WithError(err).Error("auth: logout failed")
		httpjson.RespondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}
