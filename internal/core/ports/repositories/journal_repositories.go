package repositories

import (
	"context"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindEntryBySerial retrieves a journal entry by its serial number.
	FindEntryBySerial(ctx context.Context, serial int64) (*domain.JournalEntry, error)

	// FindEntryByIdempotencyKey retrieves the entry created under the given
	// idempotency key, or ErrNotFound.
	FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error)

	// FindLinesByEntrySerial retrieves the lines of an entry in posting order.
	FindLinesByEntrySerial(ctx context.Context, serial int64) ([]domain.JournalLine, error)

	// ListEntries retrieves a paginated list of entries, newest first.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)
}

// JournalWriter defines the two mutations the ledger permits. Both execute as
// a single database transaction: serial assignment, entry and line writes and
// cached balance updates commit or fail together.
type JournalWriter interface {
	// CreateEntry assigns the next serial and persists the entry with its
	// lines, applying balanceChanges to the touched accounts. Returns the
	// persisted entry with the serial set. A concurrent insert under the same
	// idempotency key surfaces as ErrDuplicate.
	CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)

	// VoidEntry persists the reversal entry with its mirrored lines, marks the
	// original entry VOIDED with a back-reference, and applies balanceChanges,
	// all atomically. The original entry's lines are never modified.
	VoidEntry(ctx context.Context, originalSerial int64, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
