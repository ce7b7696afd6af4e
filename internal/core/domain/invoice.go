package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus models the invoice lifecycle:
// draft -> confirmed -> posted -> paid/cancelled, with draft/confirmed also
// able to go straight to cancelled.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceConfirmed InvoiceStatus = "CONFIRMED"
	InvoicePosted    InvoiceStatus = "POSTED"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is a customer invoice. It exclusively owns its lines and its
// (at most one) posting reference. Once confirmed it is never physically
// deleted; cancellation is a terminal state, not removal.
type Invoice struct {
	Number        string          `json:"number"`
	CustomerRef   string          `json:"customerRef"`
	IssuedAt      time.Time       `json:"issuedAt"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Description   string          `json:"description,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Status        InvoiceStatus   `json:"status"`
	PostingSerial *int64          `json:"postingSerial,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	Lines         []InvoiceLine   `json:"lines,omitempty"`
	AuditFields
}

// FormatInvoiceNumber renders an invoice sequence value as a public number.
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("INV-%d", seq)
}

// ComputeTotal derives the invoice total from its lines at full precision.
func (inv Invoice) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.Amount)
	}
	return total
}

// InvoiceLine is one ordered position on an invoice.
// Amount is always quantity times unit price.
type InvoiceLine struct {
	LineID        string          `json:"lineID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Amount        decimal.Decimal `json:"amount"`
	Order         int             `json:"order"`
}
