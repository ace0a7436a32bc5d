// Package reconcile compares computed balances against an externally
// supplied ground truth and reports signed differences.
package reconcile

import (
	"sort"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// Finding is the comparison result for one account. A delta beyond the
// tolerance is data to act on, not an error: the two ledgers are
// maintained independently and small rounding drift is expected.
type Finding struct {
	Account         string     `json:"account"`
	Computed        core.Money `json:"computed"`
	Expected        core.Money `json:"expected"`
	Delta           core.Money `json:"delta"`
	WithinTolerance bool       `json:"within_tolerance"`
}

// Report compares computed balances against expected snapshots. One
// finding per snapshot, ordered by account; delta = computed - expected.
// Accounts present in the snapshots but absent from the computed set
// compare against zero. Epsilon is the caller's tolerance; an exact match
// is required when it is zero.
//
// The comparison is pure and sign-symmetric: swapping computed and
// expected negates every delta.
func Report(computed ledger.Balances, expected []core.BalanceSnapshot, epsilon core.Money) []Finding {
	findings := make([]Finding, 0, len(expected))
	for _, snap := range expected {
		c := computed[snap.Account]
		delta := c.Sub(snap.Expected)
		findings = append(findings, Finding{
			Account:         snap.Account,
			Computed:        c,
			Expected:        snap.Expected,
			Delta:           delta,
			WithinTolerance: delta.Abs().Cmp(epsilon.Abs()) <= 0,
		})
	}
	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Account < findings[j].Account
	})
	return findings
}

// Mismatches filters a report down to the findings outside tolerance.
func Mismatches(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if !f.WithinTolerance {
			out = append(out, f)
		}
	}
	return out
}
