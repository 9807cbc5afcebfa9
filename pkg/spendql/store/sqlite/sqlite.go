package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/spendql/pkg/spendql/store"
)

// sqliteStore implements store.Dataset using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite-backed transactions table with WAL mode enabled,
// creating the schema if needed.
func Open(ctx context.Context, path string) (store.Dataset, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	amount REAL NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	merchant TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Add inserts transactions in one database transaction.
func (s *sqliteStore) Add(ctx context.Context, txs ...store.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (date, amount, category, merchant, description)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx,
			t.Date.Format(time.RFC3339), t.Amount, t.Category, t.Merchant, t.Description)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Transactions returns the full table in insertion order.
func (s *sqliteStore) Transactions(ctx context.Context) ([]store.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, amount, category, merchant, description
		FROM transactions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []store.Transaction
	for rows.Next() {
		var t store.Transaction
		var rawDate string
		if err := rows.Scan(&rawDate, &t.Amount, &t.Category, &t.Merchant, &t.Description); err != nil {
			return nil, err
		}
		t.Date, err = time.Parse(time.RFC3339, rawDate)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", rawDate, err)
		}
		txs = append(txs, t)
	}

	return txs, rows.Err()
}
