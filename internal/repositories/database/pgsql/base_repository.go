package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common transaction handling for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction, ignoring already-finished transactions.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// nextSequenceValue advances the named monotonic counter and returns the new
// value. The upsert locks the sequence row, so the counter advance commits or
// rolls back together with the enclosing transaction: committed entries never
// leave gaps, aborted ones may.
func nextSequenceValue(ctx context.Context, tx pgx.Tx, key string) (int64, error) {
	query := `
		INSERT INTO number_sequences (key, last_value)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET last_value = number_sequences.last_value + 1
		RETURNING last_value;
	`
	var value int64
	if err := tx.QueryRow(ctx, query, key).Scan(&value); err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance sequence "+key, err)
	}
	return value, nil
}
