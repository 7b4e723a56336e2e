package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models/events"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage"
)

// DepositRequest is a deposit as received from the transport layer. Amount
// is the raw text of the submitted value so non-numeric input can be
// reported precisely.
type DepositRequest struct {
	AccountID string
	Amount    string
	Reference *string
	UserID    string // identity resolved by the caller's authentication layer
}

// DepositResult is the recorded entry and the balance right after it.
type DepositResult struct {
	Entry   models.LedgerEntry
	Balance decimal.Decimal
}

// Deposit records a deposit and credits the account in one atomic unit of
// work. It is not idempotent: the same request twice creates two entries.
func (l *Ledger) Deposit(ctx context.Context, req DepositRequest) (res DepositResult, err error) {
	defer l.observe("deposit", time.Now(), &err)

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return DepositResult{}, err
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return DepositResult{}, validationError("accountId is required")
	}

	acct, err := l.ownedAccount(ctx, req.AccountID, req.UserID)
	if err != nil {
		return DepositResult{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return DepositResult{}, internalError(err)
	}

	entry := models.LedgerEntry{
		ID:        id.String(),
		AccountID: acct.ID,
		Kind:      models.EntryKindDeposit,
		Amount:    amount,
		Reference: req.Reference,
		CreatedAt: l.now(),
	}

	balance, err := l.store.ApplyDeposit(ctx, entry)
	if errors.Is(err, storage.ErrAccountNotFound) {
		// deleted between the ownership check and the write
		return DepositResult{}, notFoundError("account not found")
	}
	if err != nil {
		l.logger.Error("deposit rolled back",
			zap.String("account_id", acct.ID),
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
		return DepositResult{}, internalError(err)
	}

	l.logger.Info("deposit recorded",
		zap.String("account_id", acct.ID),
		zap.String("entry_id", entry.ID),
		zap.String("amount", amount.StringFixed(amountScale)),
		zap.String("balance", balance.StringFixed(amountScale)),
	)

	l.publishDeposit(ctx, acct, entry, balance)

	return DepositResult{Entry: entry, Balance: balance}, nil
}

// publishDeposit emits the event for a committed deposit. The deposit is
// already durable, so a delivery failure is only logged and counted.
func (l *Ledger) publishDeposit(ctx context.Context, acct models.Account, entry models.LedgerEntry, balance decimal.Decimal) {
	if l.publisher == nil {
		return
	}

	event := events.DepositRecorded{
		EntryID:    entry.ID,
		AccountID:  acct.ID,
		OwnerID:    acct.OwnerID,
		Currency:   string(acct.Currency),
		Amount:     entry.Amount,
		Balance:    balance,
		Reference:  entry.Reference,
		OccurredAt: entry.CreatedAt,
	}
	// the caller going away must not drop the event of a committed deposit
	if err := l.publisher.Publish(context.WithoutCancel(ctx), acct.ID, event); err != nil {
		l.metrics.EventPublishFailed()
		l.logger.Warn("publish deposit event failed",
			zap.String("account_id", acct.ID),
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
	}
}
