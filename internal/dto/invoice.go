package dto

import (
	"time"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one ordered invoice position.
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateInvoiceRequest defines the data needed to create a draft invoice.
type CreateInvoiceRequest struct {
	CustomerRef string               `json:"customerRef" binding:"required"`
	IssuedAt    time.Time            `json:"issuedAt"`
	DueDate     *time.Time           `json:"dueDate"`
	Description string               `json:"description"`
	Lines       []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CancelInvoiceRequest carries the cancellation reason.
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// RecordPaymentRequest records a payment against a posted invoice.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// InvoiceLineResponse is one persisted invoice line.
type InvoiceLineResponse struct {
	LineID      string          `json:"lineID"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse is a persisted invoice with its lines.
type InvoiceResponse struct {
	Number        string                `json:"number"`
	CustomerRef   string                `json:"customerRef"`
	IssuedAt      time.Time             `json:"issuedAt"`
	DueDate       *time.Time            `json:"dueDate,omitempty"`
	Description   string                `json:"description,omitempty"`
	Total         decimal.Decimal       `json:"total"`
	PaidAmount    decimal.Decimal       `json:"paidAmount"`
	Status        domain.InvoiceStatus  `json:"status"`
	PostingSerial *int64                `json:"postingSerial,omitempty"`
	CancelReason  string                `json:"cancelReason,omitempty"`
	Lines         []InvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListInvoicesResponse wraps the list of invoices.
type ListInvoicesResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
}

// AttachmentResponse returns the identifier of stored evidence.
type AttachmentResponse struct {
	AttachmentID string `json:"attachmentID"`
}

// ToInvoiceResponse converts a domain.Invoice to its response form.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			LineID:      line.LineID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
		}
	}
	return InvoiceResponse{
		Number:        inv.Number,
		CustomerRef:   inv.CustomerRef,
		IssuedAt:      inv.IssuedAt,
		DueDate:       inv.DueDate,
		Description:   inv.Description,
		Total:         inv.Total,
		PaidAmount:    inv.PaidAmount,
		Status:        inv.Status,
		PostingSerial: inv.PostingSerial,
		CancelReason:  inv.CancelReason,
		Lines:         lines,
		CreatedAt:     inv.CreatedAt,
		CreatedBy:     inv.CreatedBy,
	}
}

// ToListInvoicesResponse converts a slice of invoices to the list response.
func ToListInvoicesResponse(invoices []domain.Invoice) ListInvoicesResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = ToInvoiceResponse(&invoices[i])
	}
	return ListInvoicesResponse{Invoices: res}
}
