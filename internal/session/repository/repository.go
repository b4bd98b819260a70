// Package repository persists session records.
package repository

import (
	"context"
	"errors"
	"time"

	"eval-platform/backend/internal/session/domain"
)

// ErrNotFound is returned by Revoke when no session exists for the given id.
// Revoking an already-revoked or expired session is a no-op, not an error.
var ErrNotFound = errors.New("session not found")

// Repository defines persistence for sessions. Every mutation is a single
// atomic per-record statement; sessions are independent, so no multi-row
// locking is needed.
type Repository interface {
	// Create persists a new session. The session must have ID set.
	Create(ctx context.Context, s *domain.Session) error
	// GetByID returns the session for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Revoke marks an active session revoked. No-op when the session is already
	// in a terminal state; ErrNotFound when the id is unknown.
	Revoke(ctx context.Context, id string) error
	// Touch updates last_activity. Best-effort: callers may ignore the error.
	Touch(ctx context.Context, id string, at time.Time) error
	// CountActive counts the user's currently-active, non-expired sessions.
	CountActive(ctx context.Context, userID string) (int, error)
	// LatestActiveByUser returns the most recently created active session for
	// the user, or nil if none exists.
	LatestActiveByUser(ctx context.Context, userID string) (*domain.Session, error)
	// FlagSuspicious sets the session's suspicious flag.
	FlagSuspicious(ctx context.Context, id string) error
	// ListByUser returns the user's sessions, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}
