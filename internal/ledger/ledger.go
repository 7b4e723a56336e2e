package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage"
)

// Ledger records deposits and serves paginated views of an account's
// entries. It keeps no mutable state of its own; every shared value lives
// in the store.
type Ledger struct {
	store     interfaces.LedgerStore
	publisher interfaces.EventPublisher
	metrics   interfaces.LedgerMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures optional Ledger collaborators.
type Option func(*Ledger)

// WithPublisher sends a DepositRecorded event after every committed deposit.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithMetrics records the outcome and latency of every operation.
func WithMetrics(m interfaces.LedgerMetrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock replaces the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a Ledger on top of the given store.
func NewLedger(store interfaces.LedgerStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		metrics: noopMetrics{},
		logger:  zap.NewNop(),
		now:     defaultClock,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// defaultClock truncates to microseconds, the resolution PostgreSQL keeps.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// OpenAccount creates an account for userID in the given currency with an
// exact zero balance.
func (l *Ledger) OpenAccount(ctx context.Context, userID string, currency models.Currency) (acct models.Account, err error) {
	defer l.observe("open_account", time.Now(), &err)

	if strings.TrimSpace(userID) == "" {
		return models.Account{}, validationError("userId is required")
	}
	if !currency.Valid() {
		return models.Account{}, validationError("currency must be one of USD, EUR")
	}

	acct = models.Account{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: l.now(),
	}
	if err := l.store.CreateAccount(ctx, acct); err != nil {
		l.logger.Error("create account failed", zap.String("user_id", userID), zap.Error(err))
		return models.Account{}, internalError(err)
	}

	l.logger.Info("account opened",
		zap.String("account_id", acct.ID),
		zap.String("user_id", userID),
		zap.String("currency", string(currency)),
	)
	return acct, nil
}

// GetAccount returns the account if userID owns it.
func (l *Ledger) GetAccount(ctx context.Context, accountID, userID string) (acct models.Account, err error) {
	defer l.observe("get_account", time.Now(), &err)

	if strings.TrimSpace(accountID) == "" {
		return models.Account{}, validationError("accountId is required")
	}
	return l.ownedAccount(ctx, accountID, userID)
}

// Reconcile checks that the account balance equals the sum of its entries.
func (l *Ledger) Reconcile(ctx context.Context, accountID, userID string) (rec models.Reconciliation, err error) {
	defer l.observe("reconcile", time.Now(), &err)

	if strings.TrimSpace(accountID) == "" {
		return models.Reconciliation{}, validationError("accountId is required")
	}
	if _, err := l.ownedAccount(ctx, accountID, userID); err != nil {
		return models.Reconciliation{}, err
	}

	rec, err = l.store.Reconcile(ctx, accountID)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return models.Reconciliation{}, notFoundError("account not found")
	}
	if err != nil {
		l.logger.Error("reconcile failed", zap.String("account_id", accountID), zap.Error(err))
		return models.Reconciliation{}, internalError(err)
	}

	if !rec.Consistent() {
		l.logger.Warn("balance does not match ledger entries",
			zap.String("account_id", accountID),
			zap.String("balance", rec.Balance.StringFixed(amountScale)),
			zap.String("entries_total", rec.EntriesTotal.StringFixed(amountScale)),
			zap.Int("entry_count", rec.EntryCount),
		)
	}
	return rec, nil
}

// ownedAccount loads the account and enforces that userID owns it.
func (l *Ledger) ownedAccount(ctx context.Context, accountID, userID string) (models.Account, error) {
	acct, err := l.store.GetAccount(ctx, accountID)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return models.Account{}, notFoundError("account not found")
	}
	if err != nil {
		l.logger.Error("load account failed", zap.String("account_id", accountID), zap.Error(err))
		return models.Account{}, internalError(err)
	}
	if acct.OwnerID != userID {
		return models.Account{}, forbiddenError()
	}
	return acct, nil
}

func (l *Ledger) observe(operation string, start time.Time, err *error) {
	result := "ok"
	if *err != nil {
		result = KindOf(*err).String()
	}
	l.metrics.ObserveOperation(operation, result, time.Since(start))
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, string, time.Duration) {}
func (noopMetrics) EventPublishFailed()                             {}
