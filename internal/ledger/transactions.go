package ledger

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
)

// ListRequest asks for one page of an account's entries. Page and Limit are
// raw query values; empty means the default.
type ListRequest struct {
	AccountID string
	Page      string
	Limit     string
	UserID    string
}

// ListTransactions returns entries newest first, ties broken by id, windowed
// at (page-1)*limit. A page past the end is empty, not an error.
func (l *Ledger) ListTransactions(ctx context.Context, req ListRequest) (page models.TransactionPage, err error) {
	defer l.observe("list_transactions", time.Now(), &err)

	if strings.TrimSpace(req.AccountID) == "" {
		return models.TransactionPage{}, validationError("accountId is required")
	}
	pageNum, limit, err := parsePagination(req.Page, req.Limit)
	if err != nil {
		return models.TransactionPage{}, err
	}

	if _, err := l.ownedAccount(ctx, req.AccountID, req.UserID); err != nil {
		return models.TransactionPage{}, err
	}

	items, total, err := l.store.ListEntries(ctx, req.AccountID, limit, offsetFor(pageNum, limit))
	if err != nil {
		l.logger.Error("list entries failed", zap.String("account_id", req.AccountID), zap.Error(err))
		return models.TransactionPage{}, internalError(err)
	}
	if items == nil {
		items = []models.LedgerEntry{}
	}

	return models.TransactionPage{
		Items: items,
		Page:  pageNum,
		Limit: limit,
		Total: total,
	}, nil
}

// offsetFor clamps instead of overflowing for absurd page numbers; such a
// page is past the end either way.
func offsetFor(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
