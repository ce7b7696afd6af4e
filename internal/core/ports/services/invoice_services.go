package services

import (
	"context"
	"io"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// InvoiceSvcFacade owns the invoice state machine and the invoice-to-journal
// posting workflow.
type InvoiceSvcFacade interface {
	// CreateInvoice creates a draft invoice with its lines; the total is
	// derived from the lines.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, actor string) (*domain.Invoice, error)

	// GetInvoice returns an invoice with its lines, or ErrNotFound.
	GetInvoice(ctx context.Context, number string) (*domain.Invoice, error)

	// ListInvoices returns a page of invoices, newest first.
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error)

	// Confirm transitions DRAFT -> CONFIRMED, recomputing the total from
	// lines. The ledger is not touched.
	Confirm(ctx context.Context, number string, actor string) (*domain.Invoice, error)

	// PostToLedger derives balanced journal lines from the invoice total and
	// the configured posting mapping, posts them idempotently, stores the
	// receipt reference and transitions CONFIRMED -> POSTED.
	PostToLedger(ctx context.Context, number string, actor string) (*domain.PostingReceipt, error)

	// Cancel transitions DRAFT/CONFIRMED -> CANCELLED directly. A POSTED
	// invoice is cancelled by voiding the linked journal entry first.
	Cancel(ctx context.Context, number string, reason string, actor string) (*domain.Invoice, error)

	// RecordPayment adds to the paid amount of a POSTED invoice and
	// transitions to PAID once the paid amount reaches the total.
	RecordPayment(ctx context.Context, number string, amount decimal.Decimal, actor string) (*domain.Invoice, error)

	// AttachEvidence stores supporting evidence for a non-draft invoice via
	// the attachment collaborator and returns the attachment ID.
	AttachEvidence(ctx context.Context, number string, filename string, content io.Reader) (string, error)
}
