package ledger

import (
	"sort"

	"bilancio/internal/core"
)

// Balances maps account name to its computed balance.
type Balances map[string]core.Money

// Options controls one aggregation pass.
type Options struct {
	// Accounts declares known accounts, opening balances and composites.
	Accounts *Accounts
	// Filter restricts the result to the listed accounts when non-empty.
	Filter []string
	// Lenient creates undeclared accounts on the fly with a zero opening
	// balance instead of flagging them. Off by default: silent account
	// creation hides typos in account names.
	Lenient bool
	// Composite folds declared group totals into the result.
	Composite bool
}

// ComputeBalances replays transactions into per-account balances.
//
// Transactions are grouped by account and sorted by occurred-at date with a
// stable sort, so same-day entries keep their insertion order. Each account
// folds left from its opening balance, adding income and subtracting
// expense. Malformed records and, in strict mode, records on undeclared
// accounts are excluded and returned as record errors next to the partial
// result. The input slice is not modified; shuffling it does not change
// the outcome.
//
// Callers are expected to normalize signed amounts first (core.NormalizeAll);
// any record still carrying a negative amount is reported as malformed.
func ComputeBalances(txs []core.Transaction, opts Options) (Balances, []core.RecordError) {
	var errs []core.RecordError
	perAccount := make(map[string][]core.Transaction)

	for _, t := range txs {
		if err := t.Validate(); err != nil {
			errs = append(errs, core.RecordError{ID: t.ID, Account: t.Account, Err: err})
			continue
		}
		if !opts.Lenient && !opts.Accounts.Known(t.Account) {
			errs = append(errs, core.RecordError{
				ID:      t.ID,
				Account: t.Account,
				Err:     core.UnknownAccountError{Account: t.Account},
			})
			continue
		}
		perAccount[t.Account] = append(perAccount[t.Account], t)
	}

	balances := make(Balances, len(perAccount))
	for account, list := range perAccount {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].OccurredAt.Before(list[j].OccurredAt.Time)
		})
		balance := opts.Accounts.Opening(account)
		for _, t := range list {
			balance = fold(balance, t)
		}
		balances[account] = balance
	}

	// Declared accounts with no activity still report their opening balance.
	for _, name := range opts.Accounts.Names() {
		if _, ok := balances[name]; !ok {
			balances[name] = opts.Accounts.Opening(name)
		}
	}

	if opts.Composite {
		balances = opts.Accounts.Composite(balances)
	}

	if len(opts.Filter) > 0 {
		filtered := make(Balances, len(opts.Filter))
		for _, name := range opts.Filter {
			if b, ok := balances[name]; ok {
				filtered[name] = b
			}
		}
		balances = filtered
	}

	return balances, errs
}

// BalancePoint is one step of an account's running balance.
type BalancePoint struct {
	Transaction core.Transaction
	Balance     core.Money
}

// Series returns the running balance of a single account after each of its
// transactions, in date order. Useful when hunting for the exact entry
// where a ledger diverged from the spreadsheet.
func Series(txs []core.Transaction, account string, opts Options) ([]BalancePoint, []core.RecordError) {
	var errs []core.RecordError
	var list []core.Transaction
	for _, t := range txs {
		if t.Account != account {
			continue
		}
		if err := t.Validate(); err != nil {
			errs = append(errs, core.RecordError{ID: t.ID, Account: t.Account, Err: err})
			continue
		}
		list = append(list, t)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].OccurredAt.Before(list[j].OccurredAt.Time)
	})
	points := make([]BalancePoint, 0, len(list))
	balance := opts.Accounts.Opening(account)
	for _, t := range list {
		balance = fold(balance, t)
		points = append(points, BalancePoint{Transaction: t, Balance: balance})
	}
	return points, errs
}

func fold(balance core.Money, t core.Transaction) core.Money {
	if t.Direction == core.Income {
		return balance.Add(t.Amount)
	}
	return balance.Sub(t.Amount)
}
