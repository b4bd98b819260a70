// Package middleware holds the request-boundary authentication gate.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/metrics"
	"eval-platform/backend/internal/principal"
	"eval-platform/backend/internal/security"
	sessiondomain "eval-platform/backend/internal/session/domain"
)

const bearerPrefix = "bearer "

// Mode selects how the gate treats an unauthenticated request.
type Mode int

const (
	// ModeRequired rejects the request with 401 before the protected handler runs.
	ModeRequired Mode = iota
	// ModeOptional admits the request anonymously, with no principal attached.
	ModeOptional
)

// SessionChecker looks up whether the session behind a verified token is still
// active. Revocation lives in the session store, not in the token.
type SessionChecker interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// Gate verifies bearer tokens and resolves the request principal. One
// implementation serves both enforcement modes.
type Gate struct {
	tokens   *security.TokenProvider
	sessions SessionChecker
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewGate returns a Gate. sessions may be nil to skip the revocation lookup
// (token-only verification). timeout bounds the session lookup; non-positive
// falls back to 5s.
func NewGate(tokens *security.TokenProvider, sessions SessionChecker, timeout time.Duration, log logrus.FieldLogger) *Gate {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gate{tokens: tokens, sessions: sessions, timeout: timeout, log: log}
}

// Middleware returns the authentication middleware for the given mode.
func (g *Gate) Middleware(mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				g.deny(w, r, next, mode, "missing_token")
				return
			}

			claims, err := g.tokens.Verify(token)
			if err != nil {
				g.deny(w, r, next, mode, verifyReason(err))
				return
			}
			if claims.Kind != security.TokenKindAccess {
				g.deny(w, r, next, mode, "wrong_kind")
				return
			}

			if g.sessions != nil && claims.SessionID != "" {
				lookupCtx, cancel := context.WithTimeout(r.Context(), g.timeout)
				sess, err := g.sessions.GetByID(lookupCtx, claims.SessionID)
				cancel()
				if err != nil {
					// A store failure is not an authentication verdict. Report
					// it as retryable, never as unauthenticated.
					g.log.WithError(err).Warn("auth gate: session lookup failed")
					http.Error(w, "internal error, retry", http.StatusInternalServerError)
					return
				}
				if sess == nil || !sess.IsActive(time.Now()) {
					g.deny(w, r, next, mode, "session_inactive")
					return
				}
			}

			p := principal.Principal{UserID: claims.Subject, Email: claims.Email}
			ctx := principal.WithContext(r.Context(), p)
			ctx = WithSessionID(ctx, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// deny finishes an unauthenticated request according to mode.
func (g *Gate) deny(w http.ResponseWriter, r *http.Request, next http.Handler, mode Mode, reason string) {
	if mode == ModeOptional {
		next.ServeHTTP(w, r)
		return
	}
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, security.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, security.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed_token"
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
