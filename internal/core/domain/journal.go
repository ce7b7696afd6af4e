package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	EntryPosted EntryStatus = "POSTED"
	EntryVoided EntryStatus = "VOIDED"
)

// JournalEntry is one immutable, balanced financial event. Once posted, the
// only permitted mutation is the POSTED -> VOIDED status change plus the
// reversal back-reference; lines are never touched and entries are never
// deleted.
type JournalEntry struct {
	Serial         int64        `json:"serial"`
	EntryDate      time.Time    `json:"entryDate"`
	Description    string       `json:"description"`
	Status         EntryStatus  `json:"status"`
	Origin         *DocumentRef `json:"origin,omitempty"`
	IdempotencyKey string       `json:"idempotencyKey,omitempty"`
	ReversalOf     *int64       `json:"reversalOf,omitempty"`
	ReversedBy     *int64       `json:"reversedBy,omitempty"`
	Checksum       string       `json:"checksum"`
	Lines          []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// DisplayNumber renders the human-readable serial, e.g. "JE-000042".
func (e JournalEntry) DisplayNumber() string {
	return FormatEntrySerial(e.Serial)
}

// FormatEntrySerial renders a journal serial as a human-readable number.
func FormatEntrySerial(serial int64) string {
	return fmt.Sprintf("JE-%06d", serial)
}

// JournalLine is a single debit or credit against one account. Amount is
// strictly positive; the side carries the direction.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntrySerial int64           `json:"entrySerial"`
	AccountCode string          `json:"accountCode"`
	Side        EntrySide       `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
	Order       int             `json:"order"`
}

// PostingReceipt is the immutable record returned by a successful post. The
// checksum fingerprints the line set so retries with a different payload can
// be distinguished from genuine idempotent replays.
type PostingReceipt struct {
	EntrySerial int64     `json:"entrySerial"`
	PostedAt    time.Time `json:"postedAt"`
	Checksum    string    `json:"checksum"`
}
