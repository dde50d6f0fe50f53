package sheets

import (
	"context"

	"spendscan/internal/core"
)

// Ports for outbound adapters.
type (
	// BudgetWriter replaces the published budget table.
	BudgetWriter interface {
		WriteBudgets(ctx context.Context, budgets []core.CategoryBudget) error
	}

	// CategoryWriter replaces the published category breakdown.
	CategoryWriter interface {
		WriteCategories(ctx context.Context, aggregates []core.CategoryAggregate) error
	}

	// SummaryWriter publishes both tables.
	SummaryWriter interface {
		BudgetWriter
		CategoryWriter
	}
)
