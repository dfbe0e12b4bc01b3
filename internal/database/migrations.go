package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is idempotent; Migrate runs it on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		curr_sym_code VARCHAR(16) NOT NULL,
		creation_time TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		description VARCHAR(4096)
	)`,
	`CREATE TABLE IF NOT EXISTS posting_log (
		id BIGSERIAL PRIMARY KEY,
		plan_id VARCHAR(64) NOT NULL,
		batch_id BIGINT NOT NULL,
		posting_index INT NOT NULL,
		from_account_id BIGINT NOT NULL REFERENCES accounts (id),
		to_account_id BIGINT NOT NULL REFERENCES accounts (id),
		amount BIGINT NOT NULL CHECK (amount >= 0),
		curr_sym_code VARCHAR(16) NOT NULL,
		operation VARCHAR(16) NOT NULL CHECK (operation IN ('HOLD', 'COMMIT', 'ROLLBACK')),
		description VARCHAR(4096),
		CHECK (from_account_id <> to_account_id),
		UNIQUE (plan_id, batch_id, operation, posting_index)
	)`,
	`CREATE INDEX IF NOT EXISTS posting_log_from_account_idx ON posting_log (from_account_id, id)`,
	`CREATE INDEX IF NOT EXISTS posting_log_to_account_idx ON posting_log (to_account_id, id)`,
	`CREATE TABLE IF NOT EXISTS plan_log (
		plan_id VARCHAR(64) PRIMARY KEY,
		last_batch_id BIGINT NOT NULL,
		last_access_time TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		last_operation VARCHAR(16) NOT NULL CHECK (last_operation IN ('HOLD', 'COMMIT', 'ROLLBACK')),
		clock BIGINT NOT NULL
	)`,
}

// Migrate creates the ledger tables inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}
	return tx.Commit()
}
