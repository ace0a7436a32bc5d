package memory

import (
	"context"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

func tx(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Account:     "Cash",
		Direction:   core.Income,
		Amount:      core.MustMoney("10"),
		OccurredAt:  core.NewDate(2024, 1, 1),
		Description: "test",
	}
}

func TestStore_AddMany_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	added, err := s.AddMany(ctx, []core.Transaction{tx("a"), tx("b")})
	if err != nil || added != 2 {
		t.Fatalf("AddMany = %d, %v; want 2, nil", added, err)
	}

	// Re-import of the same batch adds nothing.
	added, err = s.AddMany(ctx, []core.Transaction{tx("a"), tx("b"), tx("c")})
	if err != nil || added != 1 {
		t.Fatalf("second AddMany = %d, %v; want 1, nil", added, err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("List = %d transactions, want 3", len(list))
	}
}

func TestStore_RemoveByIDs(t *testing.T) {
	ctx := context.Background()
	s := New(tx("a"), tx("b"), tx("c"))

	removed, err := s.RemoveByIDs(ctx, []string{"b", "missing"})
	if err != nil || removed != 1 {
		t.Fatalf("RemoveByIDs = %d, %v; want 1, nil", removed, err)
	}

	if _, err := s.Get(ctx, "b"); err != store.ErrNotFound {
		t.Errorf("Get(b) after remove = %v, want ErrNotFound", err)
	}
	if got, err := s.Get(ctx, "c"); err != nil || got.ID != "c" {
		t.Errorf("Get(c) = %v, %v; want c", got, err)
	}
}

func TestStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(tx("a"))

	list, _ := s.List(ctx)
	list[0].Account = "Tampered"

	again, _ := s.List(ctx)
	if again[0].Account != "Cash" {
		t.Error("mutating a List result leaked into the store")
	}
}
