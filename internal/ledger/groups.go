// Package ledger computes authoritative per-account balances by replaying
// the transaction history.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"bilancio/internal/core"
)

type (
	// AccountSpec is one declared ledger account. Group is the optional
	// composite it rolls up into; Opening seeds the balance for histories
	// that start mid-life.
	AccountSpec struct {
		Name    string `json:"name"`
		Group   string `json:"group,omitempty"`
		Opening string `json:"opening,omitempty"`
	}

	accountsFile struct {
		Accounts []AccountSpec `json:"accounts"`
	}

	// Accounts is the declared account hierarchy. Composite balances come
	// only from this mapping; they are never inferred from account names.
	Accounts struct {
		specs    map[string]AccountSpec
		openings map[string]core.Money
		groups   map[string][]string
	}
)

// ParseAccounts builds an Accounts from JSON configuration.
func ParseAccounts(data []byte) (*Accounts, error) {
	var f accountsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse accounts config: %w", err)
	}
	a := &Accounts{
		specs:    make(map[string]AccountSpec, len(f.Accounts)),
		openings: make(map[string]core.Money, len(f.Accounts)),
		groups:   make(map[string][]string),
	}
	for _, spec := range f.Accounts {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("accounts config: account with empty name")
		}
		if _, ok := a.specs[name]; ok {
			return nil, fmt.Errorf("accounts config: duplicate account %q", name)
		}
		a.specs[name] = spec
		opening := core.Zero
		if spec.Opening != "" {
			m, err := core.ParseMoney(spec.Opening)
			if err != nil {
				return nil, fmt.Errorf("accounts config: account %q: bad opening balance %q", name, spec.Opening)
			}
			opening = m
		}
		a.openings[name] = opening
		if g := strings.TrimSpace(spec.Group); g != "" {
			if g == name {
				return nil, fmt.Errorf("accounts config: account %q grouped into itself", name)
			}
			a.groups[g] = append(a.groups[g], name)
		}
	}
	for g := range a.groups {
		if _, clash := a.specs[g]; clash {
			return nil, fmt.Errorf("accounts config: group %q collides with an account name", g)
		}
	}
	return a, nil
}

// LoadAccounts reads the hierarchy from a JSON file.
func LoadAccounts(path string) (*Accounts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts config: %w", err)
	}
	return ParseAccounts(data)
}

// Known reports whether name is a declared account.
func (a *Accounts) Known(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.specs[name]
	return ok
}

// Opening returns the declared opening balance, zero when absent.
func (a *Accounts) Opening(name string) core.Money {
	if a == nil {
		return core.Zero
	}
	return a.openings[name]
}

// Names returns the declared account names in unspecified order.
func (a *Accounts) Names() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.specs))
	for name := range a.specs {
		out = append(out, name)
	}
	return out
}

// Composite adds one entry per declared group to balances, each the sum of
// its member accounts. Members missing from balances contribute only their
// opening balance.
func (a *Accounts) Composite(balances Balances) Balances {
	if a == nil {
		return balances
	}
	out := make(Balances, len(balances)+len(a.groups))
	for k, v := range balances {
		out[k] = v
	}
	for group, members := range a.groups {
		sum := core.Zero
		for _, m := range members {
			if b, ok := balances[m]; ok {
				sum = sum.Add(b)
			} else {
				sum = sum.Add(a.openings[m])
			}
		}
		out[group] = sum
	}
	return out
}
