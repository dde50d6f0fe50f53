package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

// ErrNotFound is returned by stores when no record has the requested id.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	// ExpenseStore persists expenses. Stores assign ids and timestamps.
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		// ListExpenses returns every expense, newest date first.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		UpdateExpense(ctx context.Context, id string, u core.ExpenseUpdate) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	// DraftStore keeps parsed receipts waiting for review.
	DraftStore interface {
		SaveDraft(ctx context.Context, d core.StoredDraft) (core.StoredDraft, error)
		GetDraft(ctx context.Context, id string) (core.StoredDraft, error)
		// ListDrafts returns pending drafts, oldest first.
		ListDrafts(ctx context.Context) ([]core.StoredDraft, error)
		DeleteDraft(ctx context.Context, id string) error
	}

	// ProfileStore holds the budgeting configuration.
	ProfileStore interface {
		MonthlyIncome(ctx context.Context) (decimal.Decimal, error)
		SetMonthlyIncome(ctx context.Context, income decimal.Decimal) error
		Allocations(ctx context.Context) (core.Allocations, error)
		SetAllocation(ctx context.Context, c core.Category, percent decimal.Decimal) error
	}

	// Store is implemented by the sqlite and memory adapters.
	Store interface {
		ExpenseStore
		DraftStore
		ProfileStore
	}
)
