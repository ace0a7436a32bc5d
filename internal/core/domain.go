package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Direction tells how a transaction folds into a balance: income adds,
// expense subtracts.
type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingAccount   = errors.New("missing account")
	ErrMissingDate      = errors.New("missing date")
	ErrMissingID        = errors.New("missing transaction id")
	ErrInvalidDirection = errors.New("invalid direction")
)

type (
	// Date carries date-only precision. Intra-day ordering is not
	// recoverable from the source data, so ties are broken by insertion
	// order wherever transactions are sorted.
	Date struct {
		time.Time
	}

	// Transaction is a single monetary event. Records are never mutated in
	// place; corrections arrive as new entries, and only the duplicate
	// resolution step may delete.
	Transaction struct {
		ID          string
		Account     string
		Direction   Direction
		Amount      Money
		OccurredAt  Date
		Description string
		Category    string
	}

	// AccountBalance is a derived view, recomputed on demand from the
	// transaction history, never stored authoritatively.
	AccountBalance struct {
		Account string
		Opening Money
		Balance Money
	}

	// BalanceSnapshot is an externally supplied ground-truth figure for one
	// account, read-only input to reconciliation.
	BalanceSnapshot struct {
		Account  string
		Expected Money
		AsOf     Date
	}
)

// NewDate creates a Date from year, month and day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 date, tolerating a full timestamp by
// truncating to the day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// Key returns the calendar date in ISO form, the grouping key for
// duplicate detection.
func (d Date) Key() string {
	return d.Format(time.DateOnly)
}

// WeekKey returns the ISO year-week, used by the near-duplicate heuristic.
func (d Date) WeekKey() string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Validate checks the fields every downstream component relies on. A
// failing transaction is reported and excluded from aggregation, never
// silently dropped.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrMissingAccount
	}
	if err := t.OccurredAt.Validate(); err != nil {
		return err
	}
	switch t.Direction {
	case Income, Expense:
	default:
		return ErrInvalidDirection
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize rewrites a signed amount into its canonical direction: a
// negative expense of x is an income of |x|, and vice versa. It returns
// the canonical transaction and whether anything changed.
//
// Normalization must run exactly once, upstream of both duplicate
// detection and aggregation, so the same correction entry is never
// counted twice.
func (t Transaction) Normalize() (Transaction, bool) {
	if !t.Amount.IsNegative() {
		return t, false
	}
	out := t
	out.Amount = t.Amount.Abs()
	if t.Direction == Expense {
		out.Direction = Income
	} else {
		out.Direction = Expense
	}
	return out, true
}

// NormalizeAll applies Normalize to every transaction and reports how many
// were rewritten.
func NormalizeAll(txs []Transaction) ([]Transaction, int) {
	out := make([]Transaction, len(txs))
	changed := 0
	for i, t := range txs {
		var c bool
		out[i], c = t.Normalize()
		if c {
			changed++
		}
	}
	return out, changed
}

// RecordError ties a per-record failure to the offending transaction so a
// run can report partial results alongside what was skipped.
type RecordError struct {
	ID      string
	Account string
	Err     error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("transaction %s (account %q): %v", e.ID, e.Account, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// UnknownAccountError is raised in strict aggregation mode when a
// transaction references an account the configuration does not declare.
type UnknownAccountError struct {
	Account string
}

func (e UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account %q", e.Account)
}
