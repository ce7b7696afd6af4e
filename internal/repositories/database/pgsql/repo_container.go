package pgsql

import (
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgsql repository implementations to the
// facade interfaces consumed by the service layer.
func NewRepositoryProvider(pool *pgxpool.Pool) *repositories.RepositoryProvider {
	accountRepo := NewAccountRepository(pool)
	return &repositories.RepositoryProvider{
		AccountRepo: accountRepo,
		JournalRepo: NewJournalRepository(pool, accountRepo),
		InvoiceRepo: NewInvoiceRepository(pool),
	}
}
