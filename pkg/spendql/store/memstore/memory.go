package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/spendql/pkg/spendql/store"
)

// Store is an in-memory implementation of store.Dataset. Row order is
// insertion order, which the executor preserves when listing.
type Store struct {
	mu  sync.RWMutex
	txs []store.Transaction
}

// New creates an in-memory dataset seeded with the given transactions.
func New(txs ...store.Transaction) *Store {
	s := &Store{}
	s.txs = append(s.txs, txs...)
	return s
}

// Close implements store.Dataset.
func (s *Store) Close() error { return nil }

// Add appends transactions to the table.
func (s *Store) Add(ctx context.Context, txs ...store.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
	return nil
}

// Transactions returns a copy of the full table in insertion order.
func (s *Store) Transactions(ctx context.Context) ([]store.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}
