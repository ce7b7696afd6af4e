package repositories

import (
	"context"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceReader defines read operations for invoice data.
type InvoiceReader interface {
	// FindInvoiceByNumber retrieves an invoice header by its public number.
	FindInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error)

	// FindLinesByInvoiceNumber retrieves invoice lines in document order.
	FindLinesByInvoiceNumber(ctx context.Context, number string) ([]domain.InvoiceLine, error)

	// ListInvoices retrieves a paginated list of invoices, newest first.
	ListInvoices(ctx context.Context, limit int, offset int) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data. All status
// transitions are conditional on the previously observed status (optimistic
// concurrency); a false return means the precondition no longer held.
type InvoiceWriter interface {
	// SaveInvoice assigns the next invoice number and persists the invoice
	// with its lines. Returns the persisted invoice with the number set.
	SaveInvoice(ctx context.Context, invoice domain.Invoice, lines []domain.InvoiceLine) (*domain.Invoice, error)

	// ConfirmIfDraft transitions DRAFT -> CONFIRMED and stores the recomputed
	// total in the same statement.
	ConfirmIfDraft(ctx context.Context, number string, total decimal.Decimal, actor string, now time.Time) (bool, error)

	// MarkPostedIfConfirmed transitions CONFIRMED -> POSTED and stores the
	// posting serial.
	MarkPostedIfConfirmed(ctx context.Context, number string, postingSerial int64, actor string, now time.Time) (bool, error)

	// MarkCancelled transitions from the expected status to CANCELLED,
	// recording the reason.
	MarkCancelled(ctx context.Context, number string, expected domain.InvoiceStatus, reason string, actor string, now time.Time) (bool, error)

	// AddPaymentIfPosted adds amount to the paid total of a POSTED invoice and
	// flips the status to PAID once paid >= total, in one statement. Returns
	// the updated invoice, or ErrNotFound when the invoice is missing or not
	// POSTED.
	AddPaymentIfPosted(ctx context.Context, number string, amount decimal.Decimal, actor string, now time.Time) (*domain.Invoice, error)
}

// InvoiceRepositoryFacade combines all invoice repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
