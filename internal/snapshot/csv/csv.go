// Package csv reads ground-truth balances from a local CSV export, the
// offline alternative to the live spreadsheet.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/snapshot"
)

// Reader loads snapshots from a CSV file with columns
// account,balance,as_of and a header row. The as_of column may be empty.
type Reader struct {
	Path string
}

var _ snapshot.Source = (*Reader)(nil)

func NewReader(path string) *Reader {
	return &Reader{Path: path}
}

func (r *Reader) Balances(_ context.Context) ([]core.BalanceSnapshot, error) {
	file, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file %s: %w", r.Path, err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads snapshot rows from an open CSV stream.
func Parse(src io.Reader) ([]core.BalanceSnapshot, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}

	var out []core.BalanceSnapshot
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot record: %w", err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: want at least account,balance, got %d fields", line, len(record))
		}
		account := strings.TrimSpace(record[0])
		if account == "" {
			continue
		}
		amount, err := core.ParseMoney(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad balance %q: %w", line, record[1], err)
		}
		snap := core.BalanceSnapshot{Account: account, Expected: amount}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			d, err := core.ParseDate(record[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad as-of date %q: %w", line, record[2], err)
			}
			snap.AsOf = d
		}
		out = append(out, snap)
	}
	return out, nil
}
