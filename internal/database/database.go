package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the sqlite database, enables the pragmas the ledger relies on
// and creates the schema. Cascading deletes (customer -> loans -> payments)
// are enforced here through foreign keys rather than in the services.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single local writer; sqlite serializes the rest.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Decimal amounts are stored as TEXT so no precision is lost.
func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL,
		frequency TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS loans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL,
		item_name TEXT NOT NULL,
		total_principal TEXT NOT NULL,
		down_payment TEXT NOT NULL,
		current_balance TEXT NOT NULL,
		frequency TEXT NOT NULL,
		next_due_date DATETIME NOT NULL,
		is_closed INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY(customer_id) REFERENCES customers(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans(customer_id);
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		loan_id INTEGER NOT NULL,
		amount_paid TEXT NOT NULL,
		date_paid DATETIME NOT NULL,
		FOREIGN KEY(loan_id) REFERENCES loans(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_payments_loan ON payments(loan_id);
	`

	_, err := db.Exec(schema)

	return err
}
