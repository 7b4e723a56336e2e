package models

import "github.com/shopspring/decimal"

// TransactionPage is one window over an account's ledger entries,
// newest first.
type TransactionPage struct {
	Items []LedgerEntry
	Page  int
	Limit int
	Total int // entries on the account, across all pages
}

// Reconciliation compares an account's stored balance against the sum of
// its ledger entries.
type Reconciliation struct {
	AccountID    string
	Balance      decimal.Decimal
	EntriesTotal decimal.Decimal
	EntryCount   int
}

// Consistent reports whether the balance matches its entries and is not negative.
func (r Reconciliation) Consistent() bool {
	return r.Balance.Equal(r.EntriesTotal) && !r.Balance.IsNegative()
}
