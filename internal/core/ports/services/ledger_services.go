package services

import (
	"context"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/dto"
)

// LedgerSvcFacade is the only component allowed to create or void journal
// entries, and the sole enforcer of the double-entry invariant.
type LedgerSvcFacade interface {
	// Post validates and persists a balanced journal entry atomically and
	// returns its receipt. When an entry already exists for the request's
	// idempotency key, the existing receipt is returned and nothing is
	// written; the same key with a different line set fails with ErrConflict.
	Post(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.PostingReceipt, error)

	// Void marks a posted entry VOIDED and creates its mirror-image reversal
	// in the same transaction. Returns the reversal entry. The original
	// entry's lines remain unchanged and readable.
	Void(ctx context.Context, serial int64, reason string, actor string) (*domain.JournalEntry, error)

	// GetEntry returns an entry with its lines, or ErrNotFound.
	GetEntry(ctx context.Context, serial int64) (*domain.JournalEntry, error)

	// ListEntries returns a page of entries, newest first.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error)
}
