// Package dedupe finds transactions that were imported more than once.
//
// Detection is forensic and non-destructive: it only groups candidates.
// Deciding what to delete is a separate, explicit resolution step, and
// applying a resolution is the caller's job.
package dedupe

import (
	"sort"

	"bilancio/internal/core"
)

type (
	// Key identifies one duplicate group. For exact duplicates it is the
	// full (description, calendar date, amount) triple; the near heuristic
	// widens Date to an ISO week and drops the description.
	Key struct {
		Description string
		Date        string
		Amount      string
	}

	// Group is a set of transactions sharing a Key but carrying distinct
	// ids. NeedsReview marks groups produced by the weaker heuristic,
	// which must never be resolved automatically.
	Group struct {
		Key          Key
		Transactions []core.Transaction
		NeedsReview  bool
	}
)

// FindDuplicates returns groups of transactions with identical description,
// calendar date and amount but different ids, ordered by group key. Members
// keep their input order. Running it twice on the same input yields the
// same groups.
func FindDuplicates(txs []core.Transaction) []Group {
	byKey := make(map[Key][]core.Transaction)
	for _, t := range txs {
		k := Key{
			Description: t.Description,
			Date:        t.OccurredAt.Key(),
			Amount:      t.Amount.Key(),
		}
		byKey[k] = append(byKey[k], t)
	}
	var groups []Group
	for k, members := range byKey {
		if !hasDistinctIDs(members) {
			continue
		}
		groups = append(groups, Group{Key: k, Transactions: members})
	}
	sortGroups(groups)
	return groups
}

// FindNearDuplicates applies the weaker heuristic: same amount within the
// same ISO week but different descriptions. These are suspicions, not
// findings; every returned group requires manual confirmation before any
// member may be deleted.
func FindNearDuplicates(txs []core.Transaction) []Group {
	type weekKey struct {
		Week   string
		Amount string
	}
	byKey := make(map[weekKey][]core.Transaction)
	for _, t := range txs {
		k := weekKey{Week: t.OccurredAt.WeekKey(), Amount: t.Amount.Key()}
		byKey[k] = append(byKey[k], t)
	}
	var groups []Group
	for k, members := range byKey {
		if !hasDistinctIDs(members) || !hasDistinctDescriptions(members) {
			continue
		}
		groups = append(groups, Group{
			Key:          Key{Date: k.Week, Amount: k.Amount},
			Transactions: members,
			NeedsReview:  true,
		})
	}
	sortGroups(groups)
	return groups
}

func hasDistinctIDs(members []core.Transaction) bool {
	if len(members) < 2 {
		return false
	}
	seen := make(map[string]struct{}, len(members))
	for _, t := range members {
		seen[t.ID] = struct{}{}
	}
	return len(seen) >= 2
}

func hasDistinctDescriptions(members []core.Transaction) bool {
	seen := make(map[string]struct{}, len(members))
	for _, t := range members {
		seen[t.Description] = struct{}{}
	}
	return len(seen) >= 2
}

func sortGroups(groups []Group) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Amount != b.Amount {
			return a.Amount < b.Amount
		}
		return a.Description < b.Description
	})
}
