package repositories

import (
	"context"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByCode retrieves a specific account by its code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// CountAccounts returns the number of registered accounts.
	CountAccounts(ctx context.Context) (int64, error)

	// SumPostedLines computes the signed balance of an account from the line
	// ledger up to the cutoff, applying the normal-side sign convention.
	// Lines of voided entries and of their reversals are excluded.
	SumPostedLines(ctx context.Context, code string, cutoff time.Time) (decimal.Decimal, error)

	// CountOpenPeriodReferences counts non-voided entries referencing the
	// account with an entry date at or after periodStart.
	CountOpenPeriodReferences(ctx context.Context, code string, periodStart time.Time) (int64, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, code string, actor string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside ledger transactions.
type AccountTransactionSupport interface {
	// FindAccountsByCodesForUpdate selects accounts and locks their rows
	// within the given transaction.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas within the
	// given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actor string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
