package dedupe

import (
	"errors"
	"sort"
)

// Policy selects which member of a duplicate group survives.
type Policy string

const (
	// KeepEarliestID keeps the lexicographically smallest id.
	KeepEarliestID Policy = "keep-earliest-id"
	// KeepFirstInserted keeps the member that appeared first in the input.
	KeepFirstInserted Policy = "keep-first-inserted"
	// ManualReview resolves nothing; every group goes to the ambiguous list.
	ManualReview Policy = "manual-review"
)

var ErrUnknownPolicy = errors.New("unknown resolution policy")

// Resolution is a deletion plan. RemoveIDs lists the ids a caller may
// delete; Ambiguous holds groups that need a human decision, including
// every needs-review group regardless of policy.
type Resolution struct {
	RemoveIDs []string
	Ambiguous []Group
}

// ParsePolicy validates a policy name from configuration or a flag.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case KeepEarliestID, KeepFirstInserted, ManualReview:
		return Policy(s), nil
	}
	return "", ErrUnknownPolicy
}

// Plan turns detected groups into a deletion plan under the given policy.
// It never touches storage. Removing one member per exact group and
// re-running detection yields zero groups.
func Plan(groups []Group, policy Policy) (Resolution, error) {
	var res Resolution
	for _, g := range groups {
		if g.NeedsReview || policy == ManualReview {
			res.Ambiguous = append(res.Ambiguous, g)
			continue
		}
		keep, err := survivor(g, policy)
		if err != nil {
			return Resolution{}, err
		}
		for _, t := range g.Transactions {
			if t.ID != keep {
				res.RemoveIDs = append(res.RemoveIDs, t.ID)
			}
		}
	}
	sort.Strings(res.RemoveIDs)
	return res, nil
}

func survivor(g Group, policy Policy) (string, error) {
	switch policy {
	case KeepFirstInserted:
		return g.Transactions[0].ID, nil
	case KeepEarliestID:
		keep := g.Transactions[0].ID
		for _, t := range g.Transactions[1:] {
			if t.ID < keep {
				keep = t.ID
			}
		}
		return keep, nil
	}
	return "", ErrUnknownPolicy
}

// IDs returns the member ids of a group in input order.
func (g Group) IDs() []string {
	out := make([]string, len(g.Transactions))
	for i, t := range g.Transactions {
		out[i] = t.ID
	}
	return out
}
