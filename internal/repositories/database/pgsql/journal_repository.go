package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type JournalRepository struct {
	BaseRepository
	accountRepo *AccountRepository
}

var _ repositories.JournalRepositoryFacade = (*JournalRepository)(nil)

func NewJournalRepository(pool *pgxpool.Pool, accountRepo *AccountRepository) *JournalRepository {
	return &JournalRepository{BaseRepository{Pool: pool}, accountRepo}
}

const entryColumns = `serial, entry_date, description, status, origin_kind, origin_id, idempotency_key, reversal_of, reversed_by, checksum, created_at, created_by, last_updated_at, last_updated_by`

const journalEntrySequence = "journal_entry"

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var originKind, originID, idempotencyKey *string
	err := row.Scan(
		&entry.Serial,
		&entry.EntryDate,
		&entry.Description,
		&entry.Status,
		&originKind,
		&originID,
		&idempotencyKey,
		&entry.ReversalOf,
		&entry.ReversedBy,
		&entry.Checksum,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if originKind != nil && originID != nil {
		entry.Origin = &domain.DocumentRef{Kind: domain.DocumentKind(*originKind), ID: *originID}
	}
	if idempotencyKey != nil {
		entry.IdempotencyKey = *idempotencyKey
	}
	return &entry, nil
}

func (r *JournalRepository) FindEntryBySerial(ctx context.Context, serial int64) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE serial = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, serial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, domain.FormatEntrySerial(serial))
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry", err)
	}
	return entry, nil
}

func (r *JournalRepository) FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE idempotency_key = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no entry for idempotency key", apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry by key", err)
	}
	return entry, nil
}

func (r *JournalRepository) FindLinesByEntrySerial(ctx context.Context, serial int64) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_serial, account_code, side, amount, memo, line_order
		FROM journal_lines
		WHERE entry_serial = $1
		ORDER BY line_order;
	`
	rows, err := r.Pool.Query(ctx, query, serial)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find journal lines", err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var line domain.JournalLine
		var memo *string
		if err := rows.Scan(&line.LineID, &line.EntrySerial, &line.AccountCode, &line.Side, &line.Amount, &memo, &line.Order); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line", err)
		}
		if memo != nil {
			line.Memo = *memo
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read journal lines", err)
	}
	return lines, nil
}

func (r *JournalRepository) ListEntries(ctx context.Context, limit, offset int) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries ORDER BY serial DESC LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list journal entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal entry", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read journal entries", err)
	}
	return entries, nil
}

func (r *JournalRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	serial, err := nextSequenceValue(ctx, tx, journalEntrySequence)
	if err != nil {
		return nil, err
	}
	entry.Serial = serial

	if err := r.insertEntryInTx(ctx, tx, &entry); err != nil {
		return nil, err
	}
	if err := r.insertLinesInTx(ctx, tx, serial, lines); err != nil {
		return nil, err
	}
	if err := r.applyBalanceChangesInTx(ctx, tx, balanceChanges, entry.LastUpdatedBy, entry.LastUpdatedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

func (r *JournalRepository) VoidEntry(ctx context.Context, originalSerial int64, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	serial, err := nextSequenceValue(ctx, tx, journalEntrySequence)
	if err != nil {
		return nil, err
	}
	reversal.Serial = serial
	reversal.ReversalOf = &originalSerial

	// The conditional update doubles as the void guard: a concurrent void
	// changes the status first and the second attempt affects no rows.
	voidQuery := `
		UPDATE journal_entries
		SET status = $2, reversed_by = $3, last_updated_at = $4, last_updated_by = $5
		WHERE serial = $1 AND status = $6;
	`
	tag, err := tx.Exec(ctx, voidQuery, originalSerial, domain.EntryVoided, serial, reversal.LastUpdatedAt, reversal.LastUpdatedBy, domain.EntryPosted)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to void journal entry", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrAlreadyVoided, domain.FormatEntrySerial(originalSerial))
	}

	if err := r.insertEntryInTx(ctx, tx, &reversal); err != nil {
		return nil, err
	}
	if err := r.insertLinesInTx(ctx, tx, serial, lines); err != nil {
		return nil, err
	}
	if err := r.applyBalanceChangesInTx(ctx, tx, balanceChanges, reversal.LastUpdatedBy, reversal.LastUpdatedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	reversal.Lines = lines
	return &reversal, nil
}

func (r *JournalRepository) insertEntryInTx(ctx context.Context, tx pgx.Tx, entry *domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	var originKind, originID *string
	if entry.Origin != nil {
		kind := string(entry.Origin.Kind)
		originKind, originID = &kind, &entry.Origin.ID
	}
	var idempotencyKey *string
	if entry.IdempotencyKey != "" {
		idempotencyKey = &entry.IdempotencyKey
	}
	_, err := tx.Exec(ctx, query,
		entry.Serial,
		entry.EntryDate,
		entry.Description,
		entry.Status,
		originKind,
		originID,
		idempotencyKey,
		entry.ReversalOf,
		entry.ReversedBy,
		entry.Checksum,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: entry already recorded for idempotency key", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert journal entry", err)
	}
	return nil
}

func (r *JournalRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, serial int64, lines []domain.JournalLine) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO journal_lines (line_id, entry_serial, account_code, side, amount, memo, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i, line := range lines {
		var memo *string
		if line.Memo != "" {
			memo = &line.Memo
		}
		batch.Queue(query, line.LineID, serial, line.AccountCode, line.Side, line.Amount, memo, i)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert journal lines", err)
		}
	}
	return nil
}

// applyBalanceChangesInTx locks the touched accounts in code order before
// updating cached balances, so concurrent postings against overlapping
// account sets serialize instead of deadlocking.
func (r *JournalRepository) applyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actor string, now time.Time) error {
	codes := make([]string, 0, len(balanceChanges))
	for code := range balanceChanges {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	locked, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, codes)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if _, ok := locked[code]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
	}
	return r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, actor, now)
}
