package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
)

// LedgerStore persists accounts and their ledger entries.
//
// Implementations return storage.ErrAccountNotFound when an account id does
// not resolve and storage.ErrAccountExists on duplicate account ids.
type LedgerStore interface {
	CreateAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, accountID string) (models.Account, error)

	// ApplyDeposit inserts entry and adds its amount to the owning account's
	// balance as one atomic unit of work, returning the resulting balance.
	// Either both changes are visible afterwards or neither is.
	ApplyDeposit(ctx context.Context, entry models.LedgerEntry) (decimal.Decimal, error)

	// ListEntries returns at most limit entries starting at offset, ordered by
	// creation time then id, newest first, together with the account's total
	// entry count.
	ListEntries(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntry, int, error)

	// Reconcile reads the balance and the entry sum of one account in a
	// single consistent read.
	Reconcile(ctx context.Context, accountID string) (models.Reconciliation, error)

	// DeleteAccount removes an account and cascades to its entries.
	DeleteAccount(ctx context.Context, accountID string) error
}
