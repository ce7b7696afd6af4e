package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	BaseRepository
}

var _ repositories.AccountRepositoryFacade = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{BaseRepository{Pool: pool}}
}

const accountColumns = `code, name, account_type, normal_side, is_active, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.Code,
		&account.Name,
		&account.AccountType,
		&account.NormalSide,
		&account.IsActive,
		&account.Balance,
		&account.CreatedAt,
		&account.CreatedBy,
		&account.LastUpdatedAt,
		&account.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.Code,
		account.Name,
		account.AccountType,
		account.NormalSide,
		account.IsActive,
		account.Balance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		return apperrors.NewAppError(500, "failed to save account", err)
	}
	return nil
}

func (r *AccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		return nil, apperrors.NewAppError(500, "failed to find account", err)
	}
	return account, nil
}

func (r *AccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account", err)
		}
		accounts[account.Code] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY code LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts;`).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count accounts", err)
	}
	return count, nil
}

// SumPostedLines computes the signed balance of an account up to the cutoff.
// Voided entries and their reversal entries are both excluded so a voided
// posting contributes nothing.
func (r *AccountRepository) SumPostedLines(ctx context.Context, code string, cutoff time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN l.side = a.normal_side THEN l.amount ELSE -l.amount END), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.serial = l.entry_serial
		JOIN accounts a ON a.code = l.account_code
		WHERE l.account_code = $1
		  AND e.status = 'POSTED'
		  AND e.reversal_of IS NULL
		  AND e.entry_date <= $2;
	`
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, code, cutoff).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum posted lines", err)
	}
	return balance, nil
}

// CountOpenPeriodReferences counts non-voided entries touching the account
// since the start of the open accounting period.
func (r *AccountRepository) CountOpenPeriodReferences(ctx context.Context, code string, periodStart time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT e.serial)
		FROM journal_lines l
		JOIN journal_entries e ON e.serial = l.entry_serial
		WHERE l.account_code = $1
		  AND e.status <> 'VOIDED'
		  AND e.entry_date >= $2;
	`
	var count int64
	if err := r.Pool.QueryRow(ctx, query, code, periodStart).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count entry references", err)
	}
	return count, nil
}

func (r *AccountRepository) DeactivateAccount(ctx context.Context, code, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE code = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, code, now, actor)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: active account %s", apperrors.ErrNotFound, code)
	}
	return nil
}

func (r *AccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1) ORDER BY code FOR UPDATE;`
	rows, err := tx.Query(ctx, query, codes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock accounts", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account", err)
		}
		accounts[account.Code] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read locked accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actor string, now time.Time) error {
	batch := &pgx.Batch{}
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE code = $1;
	`
	for code, change := range balanceChanges {
		batch.Queue(query, code, change, now, actor)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range balanceChanges {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to update account balances", err)
		}
	}
	return nil
}
