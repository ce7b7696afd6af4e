package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/finbooks/backoffice_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService enforces the double-entry invariant. Every journal mutation in
// the system funnels through Post and Void; nothing else writes entry rows.
type LedgerService struct {
	journalRepo repositories.JournalRepositoryFacade
	accountRepo repositories.AccountRepositoryFacade
	events      services.EventSinkSvc
}

var _ services.LedgerSvcFacade = (*LedgerService)(nil)

func NewLedgerService(journalRepo repositories.JournalRepositoryFacade, accountRepo repositories.AccountRepositoryFacade, events services.EventSinkSvc) *LedgerService {
	return &LedgerService{journalRepo: journalRepo, accountRepo: accountRepo, events: events}
}

func (s *LedgerService) Post(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.PostingReceipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	if req.Origin != nil && !domain.ValidDocumentKind(req.Origin.Kind) {
		return nil, fmt.Errorf("%w: unknown origin kind %q", apperrors.ErrValidation, req.Origin.Kind)
	}

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lr := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			AccountCode: lr.AccountCode,
			Side:        lr.Side,
			Amount:      lr.Amount,
			Memo:        lr.Memo,
			Order:       i,
		}
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, err
	}
	checksum := accounting.LineChecksum(lines)

	if req.IdempotencyKey != "" {
		existing, err := s.journalRepo.FindEntryByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return s.receiptForReplay(existing, checksum, logger)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	balanceChanges, err := s.resolveBalanceChanges(ctx, lines, true)
	if err != nil {
		return nil, err
	}

	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}
	entry := domain.JournalEntry{
		EntryDate:      entryDate,
		Description:    req.Description,
		Status:         domain.EntryPosted,
		Origin:         req.Origin,
		IdempotencyKey: req.IdempotencyKey,
		Checksum:       checksum,
		AuditFields:    domain.NewAuditFields(actor, now),
	}

	created, err := s.journalRepo.CreateEntry(ctx, entry, lines, balanceChanges)
	if err != nil {
		// A concurrent request under the same key beat this one to the insert.
		if errors.Is(err, apperrors.ErrDuplicate) && req.IdempotencyKey != "" {
			existing, findErr := s.journalRepo.FindEntryByIdempotencyKey(ctx, req.IdempotencyKey)
			if findErr != nil {
				return nil, err
			}
			return s.receiptForReplay(existing, checksum, logger)
		}
		return nil, err
	}

	debits, _ := accounting.SumSides(lines)
	s.events.OnPosted(ctx, created.Serial, created.Origin, actor, debits)

	logger.Info("journal entry posted",
		"serial", created.Serial,
		"number", created.DisplayNumber(),
		"lines", len(lines),
		"total", debits.String(),
	)
	return &domain.PostingReceipt{EntrySerial: created.Serial, PostedAt: created.CreatedAt, Checksum: created.Checksum}, nil
}

func (s *LedgerService) Void(ctx context.Context, serial int64, reason, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	original, err := s.journalRepo.FindEntryBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.EntryVoided {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAlreadyVoided, original.DisplayNumber())
	}
	if original.ReversalOf != nil {
		return nil, fmt.Errorf("%w: %s is a reversal entry and cannot be voided", apperrors.ErrConflict, original.DisplayNumber())
	}

	originalLines, err := s.journalRepo.FindLinesByEntrySerial(ctx, serial)
	if err != nil {
		return nil, err
	}

	mirrored := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		mirrored[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			AccountCode: line.AccountCode,
			Side:        line.Side.Opposite(),
			Amount:      line.Amount,
			Memo:        line.Memo,
			Order:       i,
		}
	}

	// Reversals only require the accounts to exist. An account deactivated
	// after the original posting must not make the entry unvoidable.
	balanceChanges, err := s.resolveBalanceChanges(ctx, mirrored, false)
	if err != nil {
		return nil, err
	}

	reversal := domain.JournalEntry{
		EntryDate:   now,
		Description: fmt.Sprintf("Reversal of %s: %s", original.DisplayNumber(), reason),
		Status:      domain.EntryPosted,
		Origin:      original.Origin,
		Checksum:    accounting.LineChecksum(mirrored),
		AuditFields: domain.NewAuditFields(actor, now),
	}

	created, err := s.journalRepo.VoidEntry(ctx, serial, reversal, mirrored, balanceChanges)
	if err != nil {
		return nil, err
	}

	s.events.OnVoided(ctx, serial, created.Serial, actor, reason)

	logger.Info("journal entry voided",
		"serial", serial,
		"reversalSerial", created.Serial,
		"reason", reason,
	)
	return created, nil
}

func (s *LedgerService) GetEntry(ctx context.Context, serial int64) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByEntrySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *LedgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return s.journalRepo.ListEntries(ctx, limit, offset)
}

// receiptForReplay returns the stored receipt when the replayed payload
// matches, and ErrConflict when the key is being reused for different lines.
func (s *LedgerService) receiptForReplay(existing *domain.JournalEntry, checksum string, logger *slog.Logger) (*domain.PostingReceipt, error) {
	if existing.Checksum != checksum {
		return nil, fmt.Errorf("%w: idempotency key already used with a different line set", apperrors.ErrConflict)
	}
	logger.Info("idempotent replay detected", "serial", existing.Serial, "number", existing.DisplayNumber())
	return &domain.PostingReceipt{EntrySerial: existing.Serial, PostedAt: existing.CreatedAt, Checksum: existing.Checksum}, nil
}

// resolveBalanceChanges loads and checks the referenced accounts, then folds
// the lines into one signed delta per account. requireActive rejects inactive
// accounts; new postings set it, reversals do not.
func (s *LedgerService) resolveBalanceChanges(ctx context.Context, lines []domain.JournalLine, requireActive bool) (map[string]decimal.Decimal, error) {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountCode] {
			seen[line.AccountCode] = true
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	normalSides := make(map[string]domain.EntrySide, len(codes))
	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			return nil, fmt.Errorf("%w: unknown account %s", apperrors.ErrValidation, code)
		}
		if requireActive && !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, code)
		}
		normalSides[code] = account.NormalSide
	}

	return accounting.BalanceChanges(lines, normalSides)
}
