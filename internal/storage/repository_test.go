package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
	"spendscan/internal/ports"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "spendscan.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ref := "receipts/1.jpg"
	created, err := repo.CreateExpense(ctx, core.Expense{
		Amount:      decimal.RequireFromString("12.34"),
		Description: "Latte 4.50\nBagel 7.84",
		Category:    "food & dining",
		Date:        core.NewDate(2025, 3, 1),
		Receipt:     &ref,
		StoreName:   "Cafe",
		Total:       decimal.RequireFromString("12.34"),
		Items:       []core.LineItem{{Name: "Latte", Price: decimal.RequireFromString("4.50")}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Category != core.FoodAndDining || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created expense: %+v", created)
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(created.Amount) || got.Description != created.Description || !got.Date.Equal(created.Date) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, created)
	}
	if got.Receipt == nil || *got.Receipt != ref || len(got.Items) != 1 || got.Items[0].Name != "Latte" {
		t.Fatalf("optional fields lost: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", got.CreatedAt, created.CreatedAt)
	}

	desc := "Team lunch"
	empty := ""
	updated, err := repo.UpdateExpense(ctx, created.ID, core.ExpenseUpdate{Description: &desc, Receipt: &empty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != desc || updated.Receipt != nil {
		t.Fatalf("unexpected update: %+v", updated)
	}
	got, _ = repo.GetExpense(ctx, created.ID)
	if got.Description != desc || got.Receipt != nil {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateExpenseRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateExpense(context.Background(), core.Expense{
		Amount: decimal.NewFromInt(-1),
		Date:   core.NewDate(2025, 1, 1),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestUpdateMissingExpense(t *testing.T) {
	repo := newTestRepo(t)
	desc := "x"
	if _, err := repo.UpdateExpense(context.Background(), "missing", core.ExpenseUpdate{Description: &desc}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, d := range []core.Date{core.NewDate(2025, 1, 2), core.NewDate(2025, 1, 5), core.NewDate(2025, 1, 2)} {
		if _, err := repo.CreateExpense(ctx, core.Expense{Amount: decimal.NewFromInt(1), Date: d}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(list))
	}
	if list[0].Date.String() != "2025-01-05" {
		t.Fatalf("expected newest date first, got %s", list[0].Date)
	}
	if !list[1].CreatedAt.After(list[2].CreatedAt) {
		t.Fatalf("same-day expenses should be newest first")
	}
}

func TestDrafts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	draft := core.ExpenseDraft{
		StoreName: "Market",
		Items:     []core.LineItem{{Name: "Apples", Price: decimal.RequireFromString("3.10")}},
		Amount:    decimal.RequireFromString("3.10"),
		Date:      core.NewDate(2025, 2, 1),
		Category:  core.Groceries,
	}
	saved, err := repo.SaveDraft(ctx, core.StoredDraft{Draft: draft})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", saved)
	}

	got, err := repo.GetDraft(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Draft.StoreName != "Market" || !got.Draft.Amount.Equal(draft.Amount) || got.Draft.Date.String() != "2025-02-01" {
		t.Fatalf("unexpected draft: %+v", got.Draft)
	}

	list, err := repo.ListDrafts(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one draft, got %d (err=%v)", len(list), err)
	}

	if err := repo.DeleteDraft(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetDraft(ctx, saved.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	income, err := repo.MonthlyIncome(ctx)
	if err != nil || !income.IsZero() {
		t.Fatalf("expected zero income, got %s (err=%v)", income, err)
	}
	if err := repo.SetMonthlyIncome(ctx, decimal.RequireFromString("4200.50")); err != nil {
		t.Fatalf("set income: %v", err)
	}
	income, _ = repo.MonthlyIncome(ctx)
	if !income.Equal(decimal.RequireFromString("4200.50")) {
		t.Fatalf("unexpected income %s", income)
	}
	if err := repo.SetMonthlyIncome(ctx, decimal.NewFromInt(-1)); err == nil {
		t.Fatalf("expected negative income to be rejected")
	}

	alloc, err := repo.Allocations(ctx)
	if err != nil {
		t.Fatalf("allocations: %v", err)
	}
	for c, p := range core.DefaultAllocations() {
		if !alloc.Percent(c).Equal(p) {
			t.Fatalf("seeded allocation for %s = %s, want %s", c, alloc.Percent(c), p)
		}
	}

	if err := repo.SetAllocation(ctx, "travel", decimal.NewFromInt(20)); err != nil {
		t.Fatalf("set allocation: %v", err)
	}
	alloc, _ = repo.Allocations(ctx)
	if !alloc.Percent(core.Travel).Equal(decimal.NewFromInt(20)) {
		t.Fatalf("allocation not updated: %s", alloc.Percent(core.Travel))
	}
	if err := repo.SetAllocation(ctx, "Pets", decimal.NewFromInt(5)); err == nil {
		t.Fatalf("expected unknown category to be rejected")
	}
	if err := repo.SetAllocation(ctx, core.Travel, decimal.NewFromInt(101)); err == nil {
		t.Fatalf("expected out of range allocation to be rejected")
	}
}
