// Package service implements principal-facing session management.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	auditdomain "eval-platform/backend/internal/audit/domain"
	"eval-platform/backend/internal/db"
	"eval-platform/backend/internal/principal"
	"eval-platform/backend/internal/session/domain"
	"eval-platform/backend/internal/session/repository"
)

// Scope runs fn against a session repository bound to the principal's database
// scope, so row-level security sees the caller's identity.
type Scope interface {
	Run(ctx context.Context, p principal.Principal, fn func(repo repository.Repository) error) error
}

// PostgresScope binds repositories to principal-scoped transactions on the
// shared pool.
type PostgresScope struct {
	pool *sql.DB
}

// NewPostgresScope returns a Scope over pool.
func NewPostgresScope(pool *sql.DB) *PostgresScope {
	return &PostgresScope{pool: pool}
}

// Run opens a transaction with the principal's claims applied and hands fn a
// repository bound to it.
func (s *PostgresScope) Run(ctx context.Context, p principal.Principal, fn func(repo repository.Repository) error) error {
	return db.RunAsPrincipal(ctx, s.pool, p, func(tx *sql.Tx) error {
		return fn(repository.NewPostgresRepository(tx))
	})
}

// Recorder is the best-effort security audit writer.
type Recorder interface {
	LogEvent(ctx context.Context, sessionID, userID, eventType, description, ip string)
}

// Service lets an authenticated principal inspect and revoke their own
// sessions.
type Service struct {
	scope    Scope
	recorder Recorder
	log      logrus.FieldLogger
}

// NewService returns a session Service. recorder may be nil.
func NewService(scope Scope, recorder Recorder, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{scope: scope, recorder: recorder, log: log}
}

// ListOwn returns the principal's sessions, newest first. Sessions past their
// expiry are reported as expired even if the stored status lags behind.
func (s *Service) ListOwn(ctx context.Context, p principal.Principal) ([]*domain.Session, error) {
	var out []*domain.Session
	err := s.scope.Run(ctx, p, func(repo repository.Repository) error {
		sessions, err := repo.ListByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		out = sessions
		return nil
	})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, sess := range out {
		sess.Status = sess.EffectiveStatus(now)
	}
	return out, nil
}

// RevokeOwn revokes one of the principal's sessions. A session belonging to a
// different user is reported as not found.
func (s *Service) RevokeOwn(ctx context.Context, p principal.Principal, sessionID, ip string) error {
	err := s.scope.Run(ctx, p, func(repo repository.Repository) error {
		sess, err := repo.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil || sess.UserID != p.UserID {
			return repository.ErrNotFound
		}
		return repo.Revoke(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.LogEvent(ctx, sessionID, p.UserID, auditdomain.EventSessionRevoked, "revoked by owner", ip)
	}
	return nil
}
