package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind tags what a ledger entry represents.
type EntryKind string

// EntryKindDeposit is a positive, balance-increasing entry.
const EntryKindDeposit EntryKind = "deposit"

// LedgerEntry represents a single immutable ledger record for an account
type LedgerEntry struct {
	ID        string          // unique identifier, time ordered
	AccountID string          // which account this entry belongs to
	Kind      EntryKind       // deposit only, for now
	Amount    decimal.Decimal // strictly positive
	Reference *string         // free text annotation, optional
	CreatedAt time.Time       // ordering key
}
