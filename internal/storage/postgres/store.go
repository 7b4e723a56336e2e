package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage"
)

const (
	insertAccountQuery = `INSERT INTO accounts (id, owner_id, currency, balance, created_at)
	VALUES ($1, $2, $3, $4, $5)`

	selectAccountQuery = `SELECT id, owner_id, currency, balance, created_at
	FROM accounts WHERE id = $1`

	lockAccountQuery = `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`

	insertEntryQuery = `INSERT INTO ledger_entries (id, account_id, kind, amount, reference, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	creditBalanceQuery = `UPDATE accounts SET balance = balance + $2
	WHERE id = $1 RETURNING balance`

	countEntriesQuery = `SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`

	pageEntriesQuery = `SELECT id, account_id, kind, amount, reference, created_at
	FROM ledger_entries
	WHERE account_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2 OFFSET $3`

	reconcileQuery = `SELECT a.balance, COALESCE(SUM(e.amount), 0), COUNT(e.id)
	FROM accounts a
	LEFT JOIN ledger_entries e ON e.account_id = a.id
	WHERE a.id = $1
	GROUP BY a.id, a.balance`

	deleteAccountQuery = `DELETE FROM accounts WHERE id = $1`
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

func (p *PostgresLedgerStore) CreateAccount(ctx context.Context, account models.Account) error {
	_, err := p.db.ExecContext(ctx, insertAccountQuery,
		account.ID, account.OwnerID, string(account.Currency), account.Balance, account.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	var (
		account  models.Account
		currency string
	)
	err := p.db.QueryRowContext(ctx, selectAccountQuery, accountID).Scan(
		&account.ID,
		&account.OwnerID,
		&currency,
		&account.Balance,
		&account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, storage.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	account.Currency = models.Currency(currency)
	return account, nil
}

// ApplyDeposit locks the account row, inserts the entry and credits the
// balance inside one transaction. Any error, including a cancelled ctx,
// rolls the whole thing back.
func (p *PostgresLedgerStore) ApplyDeposit(ctx context.Context, entry models.LedgerEntry) (balance decimal.Decimal, err error) {
	dbTx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin deposit: %w", err)
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	var current decimal.Decimal
	err = dbTx.QueryRowContext(ctx, lockAccountQuery, entry.AccountID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		err = storage.ErrAccountNotFound
		return decimal.Zero, err
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock account: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, insertEntryQuery,
		entry.ID, entry.AccountID, string(entry.Kind), entry.Amount, nullString(entry.Reference), entry.CreatedAt)
	if err != nil {
		return decimal.Zero, fmt.Errorf("insert entry: %w", err)
	}

	err = dbTx.QueryRowContext(ctx, creditBalanceQuery, entry.AccountID, entry.Amount).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}

	if err = dbTx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit deposit: %w", err)
	}
	return balance, nil
}

// ListEntries reads the count and the page in one read-only snapshot so the
// total always agrees with the items.
func (p *PostgresLedgerStore) ListEntries(ctx context.Context, accountID string, limit, offset int) (entries []models.LedgerEntry, total int, err error) {
	dbTx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin list: %w", err)
	}
	defer dbTx.Rollback()

	if err := dbTx.QueryRowContext(ctx, countEntriesQuery, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	rows, err := dbTx.QueryContext(ctx, pageEntriesQuery, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries = make([]models.LedgerEntry, 0, limit)
	for rows.Next() {
		var (
			entry     models.LedgerEntry
			kind      string
			reference sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.AccountID, &kind, &entry.Amount, &reference, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		entry.Kind = models.EntryKind(kind)
		if reference.Valid {
			entry.Reference = &reference.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entries: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit list: %w", err)
	}
	return entries, total, nil
}

func (p *PostgresLedgerStore) Reconcile(ctx context.Context, accountID string) (models.Reconciliation, error) {
	rec := models.Reconciliation{AccountID: accountID}
	err := p.db.QueryRowContext(ctx, reconcileQuery, accountID).Scan(&rec.Balance, &rec.EntriesTotal, &rec.EntryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reconciliation{}, storage.ErrAccountNotFound
	}
	if err != nil {
		return models.Reconciliation{}, fmt.Errorf("reconcile account: %w", err)
	}
	return rec, nil
}

func (p *PostgresLedgerStore) DeleteAccount(ctx context.Context, accountID string) error {
	res, err := p.db.ExecContext(ctx, deleteAccountQuery, accountID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return storage.ErrAccountNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
