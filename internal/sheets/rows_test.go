package sheets

import (
	"testing"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

func TestBudgetRows(t *testing.T) {
	rows := BudgetRows([]core.CategoryBudget{{
		Category:       core.Travel,
		Budget:         decimal.NewFromInt(50),
		Spent:          decimal.RequireFromString("47.5"),
		Remaining:      decimal.RequireFromString("2.5"),
		PercentageUsed: 95,
		Status:         core.StatusNear,
	}})

	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "Category" {
		t.Errorf("expected header first, got %v", rows[0])
	}
	want := []any{"Travel", "50.00", "47.50", "2.50", "95.0", "near"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("column %d: got %v, want %v", i, rows[1][i], v)
		}
	}
}

func TestCategoryRows(t *testing.T) {
	rows := CategoryRows([]core.CategoryAggregate{
		{Name: core.Groceries, Amount: decimal.RequireFromString("12.3"), Count: 2},
		{Name: "Pets", Amount: decimal.NewFromInt(4), Count: 1},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "Groceries" || rows[1][1] != "12.30" || rows[1][2] != 2 {
		t.Errorf("unexpected row %v", rows[1])
	}
	if rows[2][0] != "Pets" {
		t.Errorf("unknown category names are written as recorded, got %v", rows[2][0])
	}
}

func TestRowsEmpty(t *testing.T) {
	if rows := BudgetRows(nil); len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
	if rows := CategoryRows(nil); len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
}
