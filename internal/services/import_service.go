package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/store"
)

// ImportSummary reports one bulk import: how many rows were read, how
// many records the store actually added (re-imports add zero), and which
// rows were rejected.
type ImportSummary struct {
	Rows     int      `json:"rows"`
	Added    int      `json:"added"`
	Rejected []string `json:"rejected,omitempty"`
}

type ImportService struct {
	store store.TransactionStore
	log   *applog.Logger
}

func NewImportService(st store.TransactionStore) *ImportService {
	return &ImportService{
		store: st,
		log:   applog.Default(applog.ComponentImport),
	}
}

// Import reads a transaction CSV with a header row and columns
// id,account,direction,amount,date,description,category. An empty id gets
// a generated UUID. Malformed rows are collected and reported, never
// silently dropped, and do not abort the rest of the batch. Amounts keep
// their sign; normalization belongs to the reconciliation run.
func (s *ImportService) Import(ctx context.Context, src io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read import header: %w", err)
	}

	summary := &ImportSummary{}
	var batch []core.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read import record: %w", err)
		}
		line++
		summary.Rows++

		t, err := parseRow(record)
		if err != nil {
			summary.Rejected = append(summary.Rejected, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		batch = append(batch, t)
	}

	added, err := s.store.AddMany(ctx, batch)
	if err != nil {
		return summary, fmt.Errorf("store transactions: %w", err)
	}
	summary.Added = added

	s.log.InfoContext(ctx, "Import complete",
		"rows", summary.Rows,
		"added", summary.Added,
		"rejected", len(summary.Rejected))

	return summary, nil
}

func parseRow(record []string) (core.Transaction, error) {
	if len(record) < 5 {
		return core.Transaction{}, fmt.Errorf("want at least 5 fields, got %d", len(record))
	}

	id := strings.TrimSpace(record[0])
	if id == "" {
		id = uuid.NewString()
	}

	account := strings.TrimSpace(record[1])
	if account == "" {
		return core.Transaction{}, core.ErrMissingAccount
	}

	direction := core.Direction(strings.ToLower(strings.TrimSpace(record[2])))
	switch direction {
	case core.Income, core.Expense:
	default:
		return core.Transaction{}, core.ErrInvalidDirection
	}

	amount, err := core.ParseMoney(record[3])
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := core.ParseDate(record[4])
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:         id,
		Account:    account,
		Direction:  direction,
		Amount:     amount,
		OccurredAt: date,
	}
	if len(record) > 5 {
		t.Description = strings.TrimSpace(record[5])
	}
	if len(record) > 6 {
		t.Category = strings.TrimSpace(record[6])
	}
	return t, nil
}
