package services

import (
	"context"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// ChartSvcFacade manages the chart of accounts.
type ChartSvcFacade interface {
	// RegisterAccount creates an account; the normal-balance side is derived
	// from the account type. Fails with ErrDuplicate when the code exists.
	RegisterAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// GetAccount returns the account or ErrNotFound.
	GetAccount(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts returns a page of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)

	// BalanceAsOf computes the signed balance of an account from posted lines
	// up to the cutoff. The cached balance column is never consulted.
	BalanceAsOf(ctx context.Context, code string, cutoff time.Time) (decimal.Decimal, error)

	// DeactivateAccount marks an account inactive. Fails with ErrConflict when
	// the account is referenced by a non-voided entry in the current open
	// period.
	DeactivateAccount(ctx context.Context, code string, actor string) error

	// SeedDefaultAccounts creates the default chart when no account exists.
	// Returns the number of accounts created.
	SeedDefaultAccounts(ctx context.Context, actor string) (int, error)
}
