package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		currency TEXT NOT NULL CHECK (currency IN ('USD', 'EUR')),
		balance NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_owner_id ON accounts(owner_id)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('deposit')),
		amount NUMERIC(15,2) NOT NULL CHECK (amount > 0),
		reference TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_created
		ON ledger_entries(account_id, created_at DESC, id DESC)`,
}

// Migrate creates the tables and indexes the store needs. It is safe to run
// on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
