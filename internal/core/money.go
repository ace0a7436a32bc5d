// Package core holds the ledger domain model: transactions, money and
// the normalization rules shared by every downstream component.
//
// Amounts are exact decimals. Rounding to the minor unit happens only when
// a value is formatted for display, never while summing.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in currency-agnostic units.
type Money struct {
	Amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney builds a Money from an integer number of whole units.
func NewMoney(units int64) Money {
	return Money{Amount: decimal.NewFromInt(units)}
}

// ParseMoney parses a decimal string into Money. It accepts both dot and
// comma decimal separators. Signs are preserved; callers that require a
// non-negative amount normalize first (see Transaction.Normalize).
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Amount: d}, nil
}

// MustMoney is a test and configuration helper that panics on parse failure.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: bad amount " + s)
	}
	return m
}

func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount)}
}

func (m Money) Sub(other Money) Money {
	return Money{Amount: m.Amount.Sub(other.Amount)}
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg()}
}

func (m Money) Abs() Money {
	return Money{Amount: m.Amount.Abs()}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Equal reports numeric equality, so 70000 equals 70000.00.
func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount)
}

// Cmp compares m against other: -1 if less, 0 if equal, 1 if greater.
func (m Money) Cmp(other Money) int {
	return m.Amount.Cmp(other.Amount)
}

// Key returns the canonical full-precision string for grouping keys.
// Distinct representations of the same value map to the same key, and
// amounts that differ in any fraction digit never collide.
func (m Money) Key() string {
	return m.Amount.String()
}

// String renders the amount rounded to two fraction digits. This is the
// presentation boundary; internal arithmetic keeps full precision.
func (m Money) String() string {
	return m.Amount.StringFixed(2)
}

// MarshalJSON renders the amount as a decimal string, which survives any
// JSON parser without binary floating point loss.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Amount.String() + `"`), nil
}

// UnmarshalJSON accepts both string and bare-number encodings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Amount = d
	return nil
}
