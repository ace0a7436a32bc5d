// Package snapshot defines the port for ground-truth balance sources.
package snapshot

import (
	"context"

	"bilancio/internal/core"
)

// Source supplies, for each account, the most recent externally trusted
// balance and its as-of date. Read-only; consumed once per reconciliation
// run.
type Source interface {
	Balances(ctx context.Context) ([]core.BalanceSnapshot, error)
}
