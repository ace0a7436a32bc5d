package dedupe

import (
	"reflect"
	"testing"

	"bilancio/internal/core"
)

func tx(id, account string, dir core.Direction, amount, desc string, y, m, d int) core.Transaction {
	return core.Transaction{
		ID:          id,
		Account:     account,
		Direction:   dir,
		Amount:      core.MustMoney(amount),
		OccurredAt:  core.NewDate(y, m, d),
		Description: desc,
	}
}

func TestFindDuplicates_SpecExample(t *testing.T) {
	txs := []core.Transaction{
		tx("t1", "Cash", core.Income, "100000", "salary", 2024, 1, 1),
		tx("t2", "Cash", core.Expense, "30000", "groceries", 2024, 1, 5),
		tx("t3", "Cash", core.Expense, "30000", "groceries", 2024, 1, 5),
	}

	groups := FindDuplicates(txs)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if len(groups[0].Transactions) != 2 {
		t.Errorf("group size = %d, want 2", len(groups[0].Transactions))
	}
	if groups[0].NeedsReview {
		t.Error("exact duplicates must not need review")
	}
	if got := groups[0].IDs(); !reflect.DeepEqual(got, []string{"t2", "t3"}) {
		t.Errorf("group ids = %v, want [t2 t3] in input order", got)
	}
}

func TestFindDuplicates_Idempotent(t *testing.T) {
	txs := []core.Transaction{
		tx("t1", "Cash", core.Expense, "30000", "groceries", 2024, 1, 5),
		tx("t2", "Cash", core.Expense, "30000", "groceries", 2024, 1, 5),
		tx("t3", "Cash", core.Expense, "12", "coffee", 2024, 1, 6),
		tx("t4", "Cash", core.Expense, "12", "coffee", 2024, 1, 6),
	}

	first := FindDuplicates(txs)
	second := FindDuplicates(txs)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same input disagree")
	}

	// Remove one member per group; re-running finds nothing.
	plan, err := Plan(first, KeepFirstInserted)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	drop := make(map[string]struct{})
	for _, id := range plan.RemoveIDs {
		drop[id] = struct{}{}
	}
	var remaining []core.Transaction
	for _, tr := range txs {
		if _, gone := drop[tr.ID]; !gone {
			remaining = append(remaining, tr)
		}
	}
	if again := FindDuplicates(remaining); len(again) != 0 {
		t.Errorf("after resolution still %d groups", len(again))
	}
}

func TestFindDuplicates_DifferentKeysSeparate(t *testing.T) {
	tests := []struct {
		name string
		a, b core.Transaction
	}{
		{
			name: "different description",
			a:    tx("t1", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
			b:    tx("t2", "Cash", core.Expense, "10", "tea", 2024, 1, 5),
		},
		{
			name: "different date",
			a:    tx("t1", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
			b:    tx("t2", "Cash", core.Expense, "10", "coffee", 2024, 1, 6),
		},
		{
			name: "different amount",
			a:    tx("t1", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
			b:    tx("t2", "Cash", core.Expense, "10.01", "coffee", 2024, 1, 5),
		},
		{
			name: "amount differs past the second decimal",
			a:    tx("t1", "Cash", core.Expense, "10.001", "coffee", 2024, 1, 5),
			b:    tx("t2", "Cash", core.Expense, "10.004", "coffee", 2024, 1, 5),
		},
		{
			name: "same id is not a duplicate",
			a:    tx("t1", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
			b:    tx("t1", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if groups := FindDuplicates([]core.Transaction{tt.a, tt.b}); len(groups) != 0 {
				t.Errorf("groups = %d, want 0", len(groups))
			}
		})
	}
}

func TestFindDuplicates_EquivalentAmountRepresentations(t *testing.T) {
	// 30000 and 30000.00 are the same amount and must share a group key.
	txs := []core.Transaction{
		tx("t1", "Cash", core.Expense, "30000", "groceries", 2024, 1, 5),
		tx("t2", "Cash", core.Expense, "30000.00", "groceries", 2024, 1, 5),
	}
	if groups := FindDuplicates(txs); len(groups) != 1 {
		t.Errorf("groups = %d, want 1", len(groups))
	}
}

func TestFindNearDuplicates(t *testing.T) {
	txs := []core.Transaction{
		// Same week, same amount, different descriptions: suspicious.
		tx("t1", "Cash", core.Expense, "500", "rent", 2024, 1, 8),
		tx("t2", "Cash", core.Expense, "500", "RENT january", 2024, 1, 10),
		// Same amount in a different week: fine.
		tx("t3", "Cash", core.Expense, "500", "rent", 2024, 2, 8),
		// Exact duplicates are not near duplicates.
		tx("t4", "Cash", core.Expense, "9", "coffee", 2024, 1, 9),
		tx("t5", "Cash", core.Expense, "9", "coffee", 2024, 1, 9),
	}

	groups := FindNearDuplicates(txs)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if !g.NeedsReview {
		t.Error("near duplicates must need review")
	}
	if got := g.IDs(); !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Errorf("group ids = %v, want [t1 t2]", got)
	}
}

func TestPlan(t *testing.T) {
	groups := FindDuplicates([]core.Transaction{
		tx("t9", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
		tx("t2", "Cash", core.Expense, "10", "coffee", 2024, 1, 5),
	})

	t.Run("keep first inserted", func(t *testing.T) {
		plan, err := Plan(groups, KeepFirstInserted)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if !reflect.DeepEqual(plan.RemoveIDs, []string{"t2"}) {
			t.Errorf("remove = %v, want [t2]", plan.RemoveIDs)
		}
	})

	t.Run("keep earliest id", func(t *testing.T) {
		plan, err := Plan(groups, KeepEarliestID)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if !reflect.DeepEqual(plan.RemoveIDs, []string{"t9"}) {
			t.Errorf("remove = %v, want [t9]", plan.RemoveIDs)
		}
	})

	t.Run("manual review resolves nothing", func(t *testing.T) {
		plan, err := Plan(groups, ManualReview)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if len(plan.RemoveIDs) != 0 || len(plan.Ambiguous) != 1 {
			t.Errorf("plan = %+v, want everything ambiguous", plan)
		}
	})

	t.Run("needs-review groups never auto-resolve", func(t *testing.T) {
		near := []Group{{Key: Key{Date: "2024-W02", Amount: "500.00"}, NeedsReview: true,
			Transactions: []core.Transaction{
				tx("t1", "Cash", core.Expense, "500", "rent", 2024, 1, 8),
				tx("t2", "Cash", core.Expense, "500", "RENT", 2024, 1, 10),
			}}}
		plan, err := Plan(near, KeepFirstInserted)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if len(plan.RemoveIDs) != 0 || len(plan.Ambiguous) != 1 {
			t.Errorf("plan = %+v, want ambiguous only", plan)
		}
	})

	t.Run("unknown policy", func(t *testing.T) {
		if _, err := Plan(groups, Policy("nuke-by-date-range")); err != ErrUnknownPolicy {
			t.Errorf("err = %v, want ErrUnknownPolicy", err)
		}
	})
}

func TestParsePolicy(t *testing.T) {
	if _, err := ParsePolicy("keep-earliest-id"); err != nil {
		t.Errorf("valid policy rejected: %v", err)
	}
	if _, err := ParsePolicy("delete-all"); err == nil {
		t.Error("invalid policy accepted")
	}
}
