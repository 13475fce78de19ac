package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitArchive, downInitArchive)
}

func upInitArchive(ctx context.Context, tx *sql.Tx) error {
	// Create reconcile_passes table
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE reconcile_passes (
			id UUID PRIMARY KEY,
			address VARCHAR(255) NOT NULL,
			run_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_reconcile_passes_address_run_at ON reconcile_passes(address, run_at DESC);`)
	if err != nil {
		return err
	}

	// Create archived_requests table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE archived_requests (
			pass_id UUID NOT NULL,
			request_id VARCHAR(255) NOT NULL,
			creator VARCHAR(255) NOT NULL,
			recipient VARCHAR(255) NOT NULL,
			description VARCHAR(1024),
			payers TEXT[] NOT NULL,
			amounts BIGINT[] NOT NULL,
			total_amount BIGINT NOT NULL,
			total_collected BIGINT NOT NULL,
			role VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (pass_id, request_id),
			CONSTRAINT fk_archived_requests_pass
				FOREIGN KEY(pass_id)
				REFERENCES reconcile_passes(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_archived_requests_pass_id ON archived_requests(pass_id);`)
	if err != nil {
		return err
	}

	// Create archived_transactions table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE archived_transactions (
			digest VARCHAR(255) NOT NULL,
			address VARCHAR(255) NOT NULL,
			kind VARCHAR(64) NOT NULL,
			status VARCHAR(16) NOT NULL,
			timestamp VARCHAR(64),
			gas_used VARCHAR(64),
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (digest, address)
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_archived_transactions_address ON archived_transactions(address, timestamp DESC);`)
	if err != nil {
		return err
	}

	return nil
}

func downInitArchive(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS archived_transactions;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS archived_requests;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS reconcile_passes;`)
	if err != nil {
		return err
	}

	return nil
}
