// Package store defines the port for the canonical transaction collection.
package store

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

// ErrNotFound is returned by Get when no transaction carries the id.
var ErrNotFound = errors.New("transaction not found")

// TransactionStore owns the canonical transaction list. List gives no
// ordering guarantee; callers sort before any temporal fold. Id uniqueness
// across AddMany calls is the caller's responsibility, which the sqlite
// implementation backs up with a primary key.
type TransactionStore interface {
	List(ctx context.Context) ([]core.Transaction, error)
	AddMany(ctx context.Context, txs []core.Transaction) (added int, err error)
	RemoveByIDs(ctx context.Context, ids []string) (removed int, err error)
	// Get re-reads a single record, the precondition check before a
	// guarded delete.
	Get(ctx context.Context, id string) (*core.Transaction, error)
}
