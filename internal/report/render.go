// Package report renders run results for humans and for pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"bilancio/internal/ledger"
	"bilancio/internal/reconcile"
	"bilancio/internal/services"
)

// RenderJSON writes the full run report as indented JSON.
func RenderJSON(w io.Writer, r *services.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// RenderBalances writes an aligned account/balance table, accounts sorted
// by name.
func RenderBalances(w io.Writer, balances ledger.Balances) error {
	names := make([]string, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tBALANCE")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, balances[name])
	}
	return tw.Flush()
}

// RenderFindings writes the reconciliation table. All four fields appear
// for every account.
func RenderFindings(w io.Writer, findings []reconcile.Finding) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tCOMPUTED\tEXPECTED\tDELTA\tOK")
	for _, f := range findings {
		ok := "yes"
		if !f.WithinTolerance {
			ok = "NO"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Account, f.Computed, f.Expected, f.Delta, ok)
	}
	return tw.Flush()
}
