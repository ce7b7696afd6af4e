package dto

import (
	"time"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one proposed debit or credit line.
type EntryLineRequest struct {
	AccountCode string           `json:"accountCode" binding:"required"`
	Side        domain.EntrySide `json:"side" binding:"required,entryside"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	Memo        string           `json:"memo"`
}

// PostEntryRequest defines a proposed journal entry.
type PostEntryRequest struct {
	Description    string              `json:"description" binding:"required"`
	EntryDate      time.Time           `json:"entryDate"`
	Lines          []EntryLineRequest  `json:"lines" binding:"required"`
	Origin         *domain.DocumentRef `json:"origin"`
	IdempotencyKey string              `json:"idempotencyKey"`
}

// VoidEntryRequest carries the reason for voiding a posted entry.
type VoidEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// EntryLineResponse is one persisted journal line.
type EntryLineResponse struct {
	LineID      string           `json:"lineID"`
	AccountCode string           `json:"accountCode"`
	Side        domain.EntrySide `json:"side"`
	Amount      decimal.Decimal  `json:"amount"`
	Memo        string           `json:"memo,omitempty"`
}

// EntryResponse is a persisted journal entry with its lines.
type EntryResponse struct {
	Serial      int64               `json:"serial"`
	Number      string              `json:"number"`
	EntryDate   time.Time           `json:"entryDate"`
	Description string              `json:"description"`
	Status      domain.EntryStatus  `json:"status"`
	Origin      *domain.DocumentRef `json:"origin,omitempty"`
	ReversalOf  *int64              `json:"reversalOf,omitempty"`
	ReversedBy  *int64              `json:"reversedBy,omitempty"`
	Lines       []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy"`
}

// PostingReceiptResponse mirrors domain.PostingReceipt on the wire.
type PostingReceiptResponse struct {
	EntrySerial int64     `json:"entrySerial"`
	EntryNumber string    `json:"entryNumber"`
	PostedAt    time.Time `json:"postedAt"`
	Checksum    string    `json:"checksum"`
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ToEntryResponse converts a domain.JournalEntry to its response form.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = EntryLineResponse{
			LineID:      line.LineID,
			AccountCode: line.AccountCode,
			Side:        line.Side,
			Amount:      line.Amount,
			Memo:        line.Memo,
		}
	}
	return EntryResponse{
		Serial:      e.Serial,
		Number:      e.DisplayNumber(),
		EntryDate:   e.EntryDate,
		Description: e.Description,
		Status:      e.Status,
		Origin:      e.Origin,
		ReversalOf:  e.ReversalOf,
		ReversedBy:  e.ReversedBy,
		Lines:       lines,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
}

// ToPostingReceiptResponse converts a domain.PostingReceipt to its response form.
func ToPostingReceiptResponse(r *domain.PostingReceipt) PostingReceiptResponse {
	return PostingReceiptResponse{
		EntrySerial: r.EntrySerial,
		EntryNumber: domain.FormatEntrySerial(r.EntrySerial),
		PostedAt:    r.PostedAt,
		Checksum:    r.Checksum,
	}
}
