package db

import (
	"context"
	"database/sql"
	"fmt"

	"eval-platform/backend/internal/principal"
)

// RunAsPrincipal runs fn inside a single transaction whose Postgres session
// settings carry the request principal for row-level security policies.
//
// set_config(..., is_local => true) binds the values to the transaction, so
// they are gone before the connection returns to the pool; a later request
// reusing the same connection can never observe a stale principal.
func RunAsPrincipal(ctx context.Context, pool *sql.DB, p principal.Principal, fn func(tx *sql.Tx) error) error {
	tx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin principal tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"SELECT set_config('request.jwt.claim.sub', $1, true), set_config('request.jwt.claim.email', $2, true)",
		p.UserID, p.Email,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set principal: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
