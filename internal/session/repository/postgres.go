package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eval-platform/backend/internal/db"
	"eval-platform/backend/internal/session/domain"
)

// PostgresRepository persists sessions over the given Querier, which may be the
// pool or a principal-scoped transaction.
type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a session repository backed by q.
func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const sessionColumns = "id, user_id, device_fingerprint, ip_address, created_at, last_activity, expires_at, status, is_suspicious"

// Create persists the session to the database. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.DeviceFingerprint, s.IPAddress,
		s.CreatedAt, s.LastActivity, s.ExpiresAt, s.Status, s.Suspicious,
	)
	return err
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Revoke marks the session revoked. The transition is a single conditional
// update, so concurrent revokes of the same session serialize in the database.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET status = $1 WHERE id = $2 AND status = $3`,
		domain.StatusRevoked, id, domain.StatusActive,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Nothing transitioned: either the session is already terminal (no-op) or
	// the id is unknown (error).
	var exists bool
	if err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// Touch sets the session's last_activity timestamp.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET last_activity = $1 WHERE id = $2`, at, id)
	return err
}

// CountActive counts the user's active, non-expired sessions.
func (r *PostgresRepository) CountActive(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions
		 WHERE user_id = $1 AND status = $2 AND expires_at > NOW()`,
		userID, domain.StatusActive,
	).Scan(&n)
	return n, err
}

// LatestActiveByUser returns the user's most recently created active session,
// or nil if none exists.
func (r *PostgresRepository) LatestActiveByUser(ctx context.Context, userID string) (*domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND status = $2
		 ORDER BY created_at DESC LIMIT 1`,
		userID, domain.StatusActive,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// FlagSuspicious sets the session's suspicious flag.
func (r *PostgresRepository) FlagSuspicious(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET is_suspicious = TRUE WHERE id = $1`, id)
	return err
}

// ListByUser returns the user's sessions, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.DeviceFingerprint, &s.IPAddress,
		&s.CreatedAt, &s.LastActivity, &s.ExpiresAt, &s.Status, &s.Suspicious,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
