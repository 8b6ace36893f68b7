package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitTables, downInitTables)
}

func upInitTables(ctx context.Context, tx *sql.Tx) error {
	// Create expenses table
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE expenses (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			total_amount VARCHAR(32) NOT NULL,
			split_mode VARCHAR(16) NOT NULL,
			payer_id UUID NOT NULL,
			settled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Create expense_members table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE expense_members (
			expense_id UUID NOT NULL,
			member_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			wallet_address VARCHAR(56),
			weight INTEGER,
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (expense_id, member_id),
			CONSTRAINT fk_expense_members_expense
				FOREIGN KEY(expense_id)
				REFERENCES expenses(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	// Create shares table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE shares (
			expense_id UUID NOT NULL,
			member_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			wallet_address VARCHAR(56),
			amount VARCHAR(32) NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			tx_hash VARCHAR(64),
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (expense_id, member_id),
			CONSTRAINT fk_shares_expense
				FOREIGN KEY(expense_id)
				REFERENCES expenses(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_shares_expense_id_paid ON shares(expense_id, paid);`)
	if err != nil {
		return err
	}

	// Create trips table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE trips (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Create trip_members table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE trip_members (
			trip_id UUID NOT NULL,
			member_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			wallet_address VARCHAR(56),
			weight INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (trip_id, member_id),
			CONSTRAINT fk_trip_members_trip
				FOREIGN KEY(trip_id)
				REFERENCES trips(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	// Create trip_expense_links table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE trip_expense_links (
			trip_id UUID NOT NULL,
			expense_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (trip_id, expense_id),
			CONSTRAINT fk_trip_expense_links_trip
				FOREIGN KEY(trip_id)
				REFERENCES trips(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE,
			CONSTRAINT fk_trip_expense_links_expense
				FOREIGN KEY(expense_id)
				REFERENCES expenses(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_trip_expense_links_trip_id ON trip_expense_links(trip_id);`)
	return err
}

func downInitTables(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS trip_expense_links;`,
		`DROP TABLE IF EXISTS trip_members;`,
		`DROP TABLE IF EXISTS trips;`,
		`DROP TABLE IF EXISTS shares;`,
		`DROP TABLE IF EXISTS expense_members;`,
		`DROP TABLE IF EXISTS expenses;`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
