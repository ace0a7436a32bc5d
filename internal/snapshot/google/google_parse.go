package google

import (
	"fmt"
	"strings"

	"bilancio/internal/core"
)

// parseSnapshots converts a values matrix (as returned by the Sheets API)
// into balance snapshots. The first row is a header; it must contain
// Account and Balance columns, AsOf is optional. Blank account cells are
// skipped.
func parseSnapshots(values [][]interface{}) ([]core.BalanceSnapshot, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colAccount := indexOf(headers, "Account")
	colBalance := indexOf(headers, "Balance")
	colAsOf := indexOf(headers, "AsOf")
	if colAccount == -1 || colBalance == -1 {
		return nil, fmt.Errorf("unexpected balances header: need Account and Balance, got %v", headers)
	}

	var out []core.BalanceSnapshot
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		account := strings.TrimSpace(safeGet(row, colAccount))
		if account == "" {
			continue
		}
		amount, err := core.ParseMoney(safeGet(row, colBalance))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad balance %q for account %q", i+1, safeGet(row, colBalance), account)
		}
		snap := core.BalanceSnapshot{Account: account, Expected: amount}
		if colAsOf != -1 {
			if raw := strings.TrimSpace(safeGet(row, colAsOf)); raw != "" {
				d, err := core.ParseDate(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d: bad as-of date %q for account %q", i+1, raw, account)
				}
				snap.AsOf = d
			}
		}
		out = append(out, snap)
	}
	return out, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
