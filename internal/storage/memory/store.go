package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// A single mutex makes every method one atomic unit of work.
type MemoryLedgerStore struct {
	mu       sync.RWMutex
	accounts map[string]models.Account       // account id -> account
	entries  map[string][]models.LedgerEntry // account id -> entries in insertion order
}

// NewMemoryLedgerStore creates and returns an empty MemoryLedgerStore.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts: make(map[string]models.Account),
		entries:  make(map[string][]models.LedgerEntry),
	}
}

func (m *MemoryLedgerStore) CreateAccount(ctx context.Context, account models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.ID]; exists {
		return storage.ErrAccountExists
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return models.Account{}, storage.ErrAccountNotFound
	}
	return account, nil
}

// ApplyDeposit appends the entry and bumps the balance while holding the
// write lock, so no reader observes one change without the other.
func (m *MemoryLedgerStore) ApplyDeposit(ctx context.Context, entry models.LedgerEntry) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// a cancelled caller gets no effect at all
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	account, ok := m.accounts[entry.AccountID]
	if !ok {
		return decimal.Zero, storage.ErrAccountNotFound
	}

	account.Balance = account.Balance.Add(entry.Amount)
	m.entries[entry.AccountID] = append(m.entries[entry.AccountID], entry)
	m.accounts[entry.AccountID] = account

	return account.Balance, nil
}

func (m *MemoryLedgerStore) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	m.mu.RLock()
	// copy so sorting never touches the stored slice
	sorted := slices.Clone(m.entries[accountID])
	m.mu.RUnlock()

	slices.SortFunc(sorted, compareNewestFirst)

	total := len(sorted)
	if offset >= total {
		return []models.LedgerEntry{}, total, nil
	}
	end := min(offset+limit, total)
	return sorted[offset:end], total, nil
}

func (m *MemoryLedgerStore) Reconcile(ctx context.Context, accountID string) (models.Reconciliation, error) {
	if err := ctx.Err(); err != nil {
		return models.Reconciliation{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return models.Reconciliation{}, storage.ErrAccountNotFound
	}

	total := decimal.Zero
	for _, e := range m.entries[accountID] {
		total = total.Add(e.Amount)
	}

	return models.Reconciliation{
		AccountID:    accountID,
		Balance:      account.Balance,
		EntriesTotal: total,
		EntryCount:   len(m.entries[accountID]),
	}, nil
}

func (m *MemoryLedgerStore) DeleteAccount(ctx context.Context, accountID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[accountID]; !ok {
		return storage.ErrAccountNotFound
	}
	delete(m.accounts, accountID)
	delete(m.entries, accountID)
	return nil
}

// compareNewestFirst orders by creation time descending, then id descending.
func compareNewestFirst(a, b models.LedgerEntry) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
