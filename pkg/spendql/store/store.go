package store

import (
	"context"
	"time"
)

// Dataset is the read interface the query pipeline depends on.
// A dataset is loaded once and is read-only for the lifetime of a
// pipeline; concurrent reads are safe. Add exists for loaders and
// import tooling, not for the query path.
type Dataset interface {
	Close() error

	// Transactions returns the full table in stored row order.
	// Implementations must return a copy the caller may filter freely.
	Transactions(ctx context.Context) ([]Transaction, error)

	// Add appends transactions to the table.
	Add(ctx context.Context, txs ...Transaction) error
}

// Transaction is one ledger row. Date carries calendar meaning only;
// time-of-day is whatever the source happened to record. Merchant and
// Category are lowercase-normalized at load time.
type Transaction struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Merchant    string    `json:"merchant"`
	Description string    `json:"description,omitempty"`
}
