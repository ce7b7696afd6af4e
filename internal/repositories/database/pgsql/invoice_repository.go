package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type InvoiceRepository struct {
	BaseRepository
}

var _ repositories.InvoiceRepositoryFacade = (*InvoiceRepository)(nil)

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{BaseRepository{Pool: pool}}
}

const invoiceColumns = `number, customer_ref, issued_at, due_date, description, total, paid_amount, status, posting_serial, cancel_reason, created_at, created_by, last_updated_at, last_updated_by`

const invoiceSequence = "invoice"

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var description, cancelReason *string
	err := row.Scan(
		&invoice.Number,
		&invoice.CustomerRef,
		&invoice.IssuedAt,
		&invoice.DueDate,
		&description,
		&invoice.Total,
		&invoice.PaidAmount,
		&invoice.Status,
		&invoice.PostingSerial,
		&cancelReason,
		&invoice.CreatedAt,
		&invoice.CreatedBy,
		&invoice.LastUpdatedAt,
		&invoice.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		invoice.Description = *description
	}
	if cancelReason != nil {
		invoice.CancelReason = *cancelReason
	}
	return &invoice, nil
}

func (r *InvoiceRepository) FindInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE number = $1;`
	invoice, err := scanInvoice(r.Pool.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, number)
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice", err)
	}
	return invoice, nil
}

func (r *InvoiceRepository) FindLinesByInvoiceNumber(ctx context.Context, number string) ([]domain.InvoiceLine, error) {
	query := `
		SELECT line_id, invoice_number, description, quantity, unit_price, amount, line_order
		FROM invoice_lines
		WHERE invoice_number = $1
		ORDER BY line_order;
	`
	rows, err := r.Pool.Query(ctx, query, number)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find invoice lines", err)
	}
	defer rows.Close()

	var lines []domain.InvoiceLine
	for rows.Next() {
		var line domain.InvoiceLine
		if err := rows.Scan(&line.LineID, &line.InvoiceNumber, &line.Description, &line.Quantity, &line.UnitPrice, &line.Amount, &line.Order); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read invoice lines", err)
	}
	return lines, nil
}

func (r *InvoiceRepository) ListInvoices(ctx context.Context, limit, offset int) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC, number DESC LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list invoices", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read invoices", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice, lines []domain.InvoiceLine) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	seq, err := nextSequenceValue(ctx, tx, invoiceSequence)
	if err != nil {
		return nil, err
	}
	invoice.Number = domain.FormatInvoiceNumber(seq)

	insertQuery := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	var description, cancelReason *string
	if invoice.Description != "" {
		description = &invoice.Description
	}
	if invoice.CancelReason != "" {
		cancelReason = &invoice.CancelReason
	}
	_, err = tx.Exec(ctx, insertQuery,
		invoice.Number,
		invoice.CustomerRef,
		invoice.IssuedAt,
		invoice.DueDate,
		description,
		invoice.Total,
		invoice.PaidAmount,
		invoice.Status,
		invoice.PostingSerial,
		cancelReason,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert invoice", err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO invoice_lines (line_id, invoice_number, description, quantity, unit_price, amount, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i := range lines {
		lines[i].InvoiceNumber = invoice.Number
		lines[i].Order = i
		batch.Queue(lineQuery, lines[i].LineID, invoice.Number, lines[i].Description, lines[i].Quantity, lines[i].UnitPrice, lines[i].Amount, i)
	}
	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, apperrors.NewAppError(500, "failed to insert invoice lines", err)
		}
	}
	results.Close()

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return &invoice, nil
}

func (r *InvoiceRepository) ConfirmIfDraft(ctx context.Context, number string, total decimal.Decimal, actor string, now time.Time) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $3, total = $4, last_updated_at = $5, last_updated_by = $6
		WHERE number = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, number, domain.InvoiceDraft, domain.InvoiceConfirmed, total, now, actor)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to confirm invoice", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InvoiceRepository) MarkPostedIfConfirmed(ctx context.Context, number string, postingSerial int64, actor string, now time.Time) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $3, posting_serial = $4, last_updated_at = $5, last_updated_by = $6
		WHERE number = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, number, domain.InvoiceConfirmed, domain.InvoicePosted, postingSerial, now, actor)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to mark invoice posted", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InvoiceRepository) MarkCancelled(ctx context.Context, number string, expected domain.InvoiceStatus, reason string, actor string, now time.Time) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $3, cancel_reason = $4, last_updated_at = $5, last_updated_by = $6
		WHERE number = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, number, expected, domain.InvoiceCancelled, reason, now, actor)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to cancel invoice", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InvoiceRepository) AddPaymentIfPosted(ctx context.Context, number string, amount decimal.Decimal, actor string, now time.Time) (*domain.Invoice, error) {
	query := `
		UPDATE invoices
		SET paid_amount = paid_amount + $2,
		    status = CASE WHEN paid_amount + $2 >= total THEN 'PAID' ELSE status END,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE number = $1 AND status = $5
		RETURNING ` + invoiceColumns + `;
	`
	invoice, err := scanInvoice(r.Pool.QueryRow(ctx, query, number, amount, now, actor, domain.InvoicePosted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: posted invoice %s", apperrors.ErrNotFound, number)
		}
		return nil, apperrors.NewAppError(500, "failed to record invoice payment", err)
	}
	return invoice, nil
}
