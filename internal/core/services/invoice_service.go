package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingMapping names the two accounts a sales invoice posts against:
// debit the receivable, credit the revenue, both for the invoice total.
type PostingMapping struct {
	ReceivableAccount string
	RevenueAccount    string
}

// InvoiceService owns the invoice lifecycle. It never writes journal rows
// itself; posting and voiding go through the ledger service so the
// double-entry invariant has a single enforcement point.
type InvoiceService struct {
	invoiceRepo repositories.InvoiceRepositoryFacade
	ledger      services.LedgerSvcFacade
	attachments services.AttachmentSvcFacade
	mapping     PostingMapping
}

var _ services.InvoiceSvcFacade = (*InvoiceService)(nil)

func NewInvoiceService(invoiceRepo repositories.InvoiceRepositoryFacade, ledger services.LedgerSvcFacade, attachments services.AttachmentSvcFacade, mapping PostingMapping) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		ledger:      ledger,
		attachments: attachments,
		mapping:     mapping,
	}
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, actor string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	lines := make([]domain.InvoiceLine, len(req.Lines))
	for i, lr := range req.Lines {
		if lr.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line quantity must be positive", apperrors.ErrValidation)
		}
		if lr.UnitPrice.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: line unit price cannot be negative", apperrors.ErrValidation)
		}
		lines[i] = domain.InvoiceLine{
			LineID:      uuid.NewString(),
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitPrice:   lr.UnitPrice,
			Amount:      lr.Quantity.Mul(lr.UnitPrice),
			Order:       i,
		}
	}

	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = now
	}
	invoice := domain.Invoice{
		CustomerRef: req.CustomerRef,
		IssuedAt:    issuedAt,
		DueDate:     req.DueDate,
		Description: req.Description,
		PaidAmount:  decimal.Zero,
		Status:      domain.InvoiceDraft,
		Lines:       lines,
		AuditFields: domain.NewAuditFields(actor, now),
	}
	invoice.Total = invoice.ComputeTotal()

	saved, err := s.invoiceRepo.SaveInvoice(ctx, invoice, lines)
	if err != nil {
		return nil, err
	}

	logger.Info("invoice created", "number", saved.Number, "customerRef", saved.CustomerRef, "total", saved.Total.String())
	return saved, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, number string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	lines, err := s.invoiceRepo.FindLinesByInvoiceNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return invoice, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return s.invoiceRepo.ListInvoices(ctx, limit, offset)
}

func (s *InvoiceService) Confirm(ctx context.Context, number, actor string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.GetInvoice(ctx, number)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: cannot confirm invoice in status %s", apperrors.ErrStateTransition, invoice.Status)
	}

	total := invoice.ComputeTotal()
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: invoice total must be positive to confirm", apperrors.ErrValidation)
	}

	ok, err := s.invoiceRepo.ConfirmIfDraft(ctx, number, total, actor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s left DRAFT concurrently", apperrors.ErrStateTransition, number)
	}

	logger.Info("invoice confirmed", "number", number, "total", total.String())
	return s.GetInvoice(ctx, number)
}

func (s *InvoiceService) PostToLedger(ctx context.Context, number, actor string) (*domain.PostingReceipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.invoiceRepo.FindInvoiceByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case domain.InvoiceConfirmed:
		// proceed below
	case domain.InvoicePosted:
		// Repeating the call is harmless; return the receipt already linked.
		return s.receiptForPostedInvoice(ctx, invoice)
	default:
		return nil, fmt.Errorf("%w: cannot post invoice in status %s", apperrors.ErrStateTransition, invoice.Status)
	}

	req := dto.PostEntryRequest{
		Description: fmt.Sprintf("Sales Invoice: %s", number),
		EntryDate:   invoice.IssuedAt,
		Lines: []dto.EntryLineRequest{
			{AccountCode: s.mapping.ReceivableAccount, Side: domain.Debit, Amount: invoice.Total, Memo: number},
			{AccountCode: s.mapping.RevenueAccount, Side: domain.Credit, Amount: invoice.Total, Memo: number},
		},
		Origin:         &domain.DocumentRef{Kind: domain.DocumentInvoice, ID: number},
		IdempotencyKey: "invoice:" + number,
	}
	receipt, err := s.ledger.Post(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	ok, err := s.invoiceRepo.MarkPostedIfConfirmed(ctx, number, receipt.EntrySerial, actor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent caller may have completed the same transition with the
		// identical entry; anything else is a genuine transition failure.
		current, findErr := s.invoiceRepo.FindInvoiceByNumber(ctx, number)
		if findErr == nil && current.Status == domain.InvoicePosted &&
			current.PostingSerial != nil && *current.PostingSerial == receipt.EntrySerial {
			return receipt, nil
		}
		return nil, fmt.Errorf("%w: invoice %s left CONFIRMED concurrently", apperrors.ErrStateTransition, number)
	}

	logger.Info("invoice posted to ledger", "number", number, "entrySerial", receipt.EntrySerial)
	return receipt, nil
}

func (s *InvoiceService) Cancel(ctx context.Context, number, reason, actor string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	invoice, err := s.invoiceRepo.FindInvoiceByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled"
	}

	switch invoice.Status {
	case domain.InvoiceDraft, domain.InvoiceConfirmed:
		// no ledger impact yet, cancel directly

	case domain.InvoicePosted:
		if invoice.PostingSerial == nil {
			return nil, fmt.Errorf("%w: posted invoice %s has no linked entry", apperrors.ErrInternal, number)
		}
		_, voidErr := s.ledger.Void(ctx, *invoice.PostingSerial, fmt.Sprintf("invoice %s cancelled: %s", number, reason), actor)
		if voidErr != nil && !errors.Is(voidErr, apperrors.ErrAlreadyVoided) {
			return nil, voidErr
		}

	default:
		return nil, fmt.Errorf("%w: cannot cancel invoice in status %s", apperrors.ErrStateTransition, invoice.Status)
	}

	ok, err := s.invoiceRepo.MarkCancelled(ctx, number, invoice.Status, reason, actor, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: invoice %s changed status concurrently", apperrors.ErrStateTransition, number)
	}

	logger.Info("invoice cancelled", "number", number, "fromStatus", invoice.Status, "reason", reason)
	return s.GetInvoice(ctx, number)
}

func (s *InvoiceService) RecordPayment(ctx context.Context, number string, amount decimal.Decimal, actor string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoicePosted {
		return nil, fmt.Errorf("%w: cannot record payment on invoice in status %s", apperrors.ErrStateTransition, invoice.Status)
	}

	updated, err := s.invoiceRepo.AddPaymentIfPosted(ctx, number, amount, actor, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice %s left POSTED concurrently", apperrors.ErrStateTransition, number)
		}
		return nil, err
	}

	logger.Info("invoice payment recorded",
		"number", number,
		"amount", amount.String(),
		"paidAmount", updated.PaidAmount.String(),
		"status", updated.Status,
	)
	return updated, nil
}

func (s *InvoiceService) AttachEvidence(ctx context.Context, number, filename string, content io.Reader) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	invoice, err := s.invoiceRepo.FindInvoiceByNumber(ctx, number)
	if err != nil {
		return "", err
	}
	if invoice.Status == domain.InvoiceDraft {
		return "", fmt.Errorf("%w: evidence can only be attached to a confirmed or later invoice", apperrors.ErrStateTransition)
	}

	ref := domain.DocumentRef{Kind: domain.DocumentInvoice, ID: number}
	attachmentID, err := s.attachments.Attach(ctx, ref, filename, content)
	if err != nil {
		return "", err
	}

	logger.Info("invoice evidence attached", "number", number, "attachmentID", attachmentID, "filename", filename)
	return attachmentID, nil
}

func (s *InvoiceService) receiptForPostedInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.PostingReceipt, error) {
	if invoice.PostingSerial == nil {
		return nil, fmt.Errorf("%w: posted invoice %s has no linked entry", apperrors.ErrInternal, invoice.Number)
	}
	entry, err := s.ledger.GetEntry(ctx, *invoice.PostingSerial)
	if err != nil {
		return nil, err
	}
	return &domain.PostingReceipt{EntrySerial: entry.Serial, PostedAt: entry.CreatedAt, Checksum: entry.Checksum}, nil
}
