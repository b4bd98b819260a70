package repository

import (
	"context"
	"database/sql"

	"eval-platform/backend/internal/audit/domain"
	"eval-platform/backend/internal/db"
)

// PostgresRepository persists security events and alerts over the given Querier.
type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns an audit repository backed by q.
func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{q: q}
}

// CreateEvent appends one security event. The event must have ID set.
func (r *PostgresRepository) CreateEvent(ctx context.Context, e *domain.SecurityEvent) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO security_events (id, session_id, user_id, event_type, description, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID,
		nullString(e.SessionID),
		nullString(e.UserID),
		e.EventType,
		e.Description,
		nullString(e.IPAddress),
		e.CreatedAt,
	)
	return err
}

// CreateAlert appends one security alert with resolved=false. The alert must have ID set.
func (r *PostgresRepository) CreateAlert(ctx context.Context, a *domain.SecurityAlert) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO security_alerts (id, user_id, alert_type, severity, resolved, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)`,
		a.ID, a.UserID, a.AlertType, a.Severity, a.CreatedAt,
	)
	return err
}

// ListEventsByUser returns the user's security events, newest first, paginated
// by limit and offset.
func (r *PostgresRepository) ListEventsByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.SecurityEvent, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, session_id, user_id, event_type, description, ip_address, created_at
		 FROM security_events
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.SecurityEvent
	for rows.Next() {
		var (
			e                 domain.SecurityEvent
			sessionID, uid, ip sql.NullString
		)
		if err := rows.Scan(&e.ID, &sessionID, &uid, &e.EventType, &e.Description, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SessionID = sessionID.String
		e.UserID = uid.String
		e.IPAddress = ip.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
