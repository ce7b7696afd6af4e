package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// EntrySide is the side of the ledger a line is written on.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Opposite returns the mirrored side, used when building reversal entries.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// NormalSideFor returns the side on which increases to an account of the given
// type are recorded. Asset and expense accounts are debit-normal; liability,
// equity and revenue accounts are credit-normal.
func NormalSideFor(t AccountType) (EntrySide, bool) {
	switch t {
	case Asset, Expense:
		return Debit, true
	case Liability, Equity, Revenue:
		return Credit, true
	default:
		return "", false
	}
}

// Account represents one account in the chart of accounts.
// The code is the stable public identifier and is immutable once any journal
// line has posted against it. Balance is a cached display value; the line
// ledger is the source of truth.
type Account struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NormalSide  EntrySide       `json:"normalSide"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}
