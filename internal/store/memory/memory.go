// Package memory is the in-memory transaction store used by tests and by
// dry runs against imported files.
package memory

import (
	"context"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	byID  map[string]int
}

func New(seed ...core.Transaction) *Store {
	s := &Store{byID: make(map[string]int)}
	_, _ = s.AddMany(context.Background(), seed)
	return s
}

// List returns a copy of the current transactions in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

// AddMany appends transactions, skipping ids already present so repeated
// imports stay idempotent.
func (s *Store) AddMany(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, t := range txs {
		if _, ok := s.byID[t.ID]; ok {
			continue
		}
		s.byID[t.ID] = len(s.items)
		s.items = append(s.items, t)
		added++
	}
	return added, nil
}

// RemoveByIDs deletes the listed ids, ignoring ones already absent.
func (s *Store) RemoveByIDs(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.items[:0]
	removed := 0
	for _, t := range s.items {
		if _, gone := drop[t.ID]; gone {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.items = kept
	s.byID = make(map[string]int, len(s.items))
	for i, t := range s.items {
		s.byID[t.ID] = i
	}
	return removed, nil
}

func (s *Store) Get(_ context.Context, id string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t := s.items[i]
	return &t, nil
}

var _ store.TransactionStore = (*Store)(nil)
