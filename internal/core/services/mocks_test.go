package services_test

import (
	"context"
	"io"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	portssvc "github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SumPostedLines(ctx context.Context, code string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, code, cutoff)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) CountOpenPeriodReferences(ctx context.Context, code string, periodStart time.Time) (int64, error) {
	args := m.Called(ctx, code, periodStart)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, code string, actor string, now time.Time) error {
	args := m.Called(ctx, code, actor, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actor string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, actor, now)
	return args.Error(0)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryBySerial(ctx context.Context, serial int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByIdempotencyKey(ctx context.Context, key string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntrySerial(ctx context.Context, serial int64) ([]domain.JournalLine, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, lines, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) VoidEntry(ctx context.Context, originalSerial int64, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, originalSerial, reversal, lines, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock InvoiceRepository ---
type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindLinesByInvoiceNumber(ctx context.Context, number string) ([]domain.InvoiceLine, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceLine), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, limit int, offset int) ([]domain.Invoice, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice, lines []domain.InvoiceLine) (*domain.Invoice, error) {
	args := m.Called(ctx, invoice, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ConfirmIfDraft(ctx context.Context, number string, total decimal.Decimal, actor string, now time.Time) (bool, error) {
	args := m.Called(ctx, number, total, actor, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) MarkPostedIfConfirmed(ctx context.Context, number string, postingSerial int64, actor string, now time.Time) (bool, error) {
	args := m.Called(ctx, number, postingSerial, actor, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) MarkCancelled(ctx context.Context, number string, expected domain.InvoiceStatus, reason string, actor string, now time.Time) (bool, error) {
	args := m.Called(ctx, number, expected, reason, actor, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) AddPaymentIfPosted(ctx context.Context, number string, amount decimal.Decimal, actor string, now time.Time) (*domain.Invoice, error) {
	args := m.Called(ctx, number, amount, actor, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

// --- Mock EventSink ---
type MockEventSink struct {
	mock.Mock
}

var _ portssvc.EventSinkSvc = (*MockEventSink)(nil)

func (m *MockEventSink) OnPosted(ctx context.Context, serial int64, origin *domain.DocumentRef, actor string, total decimal.Decimal) {
	m.Called(ctx, serial, origin, actor, total)
}

func (m *MockEventSink) OnVoided(ctx context.Context, serial int64, reversalSerial int64, actor string, reason string) {
	m.Called(ctx, serial, reversalSerial, actor, reason)
}

// --- Mock LedgerService (as used by InvoiceService) ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) Post(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.PostingReceipt, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingReceipt), args.Error(1)
}

func (m *MockLedgerService) Void(ctx context.Context, serial int64, reason string, actor string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, serial, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntry(ctx context.Context, serial int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

// --- Mock AttachmentStore ---
type MockAttachmentStore struct {
	mock.Mock
}

var _ portssvc.AttachmentSvcFacade = (*MockAttachmentStore)(nil)

func (m *MockAttachmentStore) Attach(ctx context.Context, ref domain.DocumentRef, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, ref, filename, content)
	return args.String(0), args.Error(1)
}
