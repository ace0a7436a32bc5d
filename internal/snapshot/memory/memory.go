// Package memory is a fixed in-memory snapshot source for tests.
package memory

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/snapshot"
)

type Source struct {
	snaps []core.BalanceSnapshot
}

var _ snapshot.Source = (*Source)(nil)

func New(snaps ...core.BalanceSnapshot) *Source {
	return &Source{snaps: snaps}
}

func (s *Source) Balances(_ context.Context) ([]core.BalanceSnapshot, error) {
	out := make([]core.BalanceSnapshot, len(s.snaps))
	copy(out, s.snaps)
	return out, nil
}
