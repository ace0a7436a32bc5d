package services

import (
	"context"
	"strings"
	"testing"

	"bilancio/internal/core"
	storemem "bilancio/internal/store/memory"
)

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()
	st := storemem.New()
	svc := NewImportService(st)

	input := `id,account,direction,amount,date,description,category
t1,Cash,income,100000,2024-01-01,salary,work
t2,Cash,expense,30000,2024-01-05,groceries,food
,Cash,expense,-5000,2024-01-07,refund,food
t4,,income,5,2024-01-08,broken,
t5,Cash,sideways,5,2024-01-08,broken,
t6,Cash,income,abc,2024-01-08,broken,
`
	summary, err := svc.Import(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if summary.Rows != 6 {
		t.Errorf("rows = %d, want 6", summary.Rows)
	}
	if summary.Added != 3 {
		t.Errorf("added = %d, want 3", summary.Added)
	}
	if len(summary.Rejected) != 3 {
		t.Errorf("rejected = %v, want 3 entries", summary.Rejected)
	}

	list, _ := st.List(ctx)
	if len(list) != 3 {
		t.Fatalf("store holds %d transactions, want 3", len(list))
	}
	// The row without an id got a generated one.
	if list[2].ID == "" {
		t.Error("missing id was not generated")
	}
	// Signs survive import; normalization belongs to the run.
	if !list[2].Amount.Equal(core.MustMoney("-5000")) {
		t.Errorf("imported amount = %s, want -5000.00 unchanged", list[2].Amount)
	}
}

func TestImportService_Reimport_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := storemem.New()
	svc := NewImportService(st)

	input := "id,account,direction,amount,date,description,category\n" +
		"t1,Cash,income,10,2024-01-01,salary,work\n"

	first, err := svc.Import(ctx, strings.NewReader(input))
	if err != nil || first.Added != 1 {
		t.Fatalf("first import = %+v, %v; want 1 added", first, err)
	}
	second, err := svc.Import(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Added != 0 {
		t.Errorf("second import added %d, want 0", second.Added)
	}
}

func TestImportService_BadHeader(t *testing.T) {
	svc := NewImportService(storemem.New())
	if _, err := svc.Import(context.Background(), strings.NewReader("")); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestParseRow_DirectionCase(t *testing.T) {
	record := []string{"t1", "Cash", "Income", "10", "2024-01-01", "salary", "work"}
	tx, err := parseRow(record)
	if err != nil {
		t.Fatalf("parseRow: %v", err)
	}
	if tx.Direction != core.Income {
		t.Errorf("direction = %s, want income", tx.Direction)
	}
}
