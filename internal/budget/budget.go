// Package budget derives category budgets, aggregates, dashboard statistics
// and reports from an expense collection.
//
// Every function is pure: inputs are never mutated and results are recomputed
// in full on each call. Expenses whose category is outside the fixed set count
// towards Other in budgets and keep their recorded name in aggregates.
package budget

import (
	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

var (
	hundred       = decimal.NewFromInt(100)
	nearThreshold = decimal.NewFromInt(90)
)

// ComputeCategoryBudgets returns the budget position of every category with a
// positive allocation, in core.Categories order. Spend is all-time while the
// budget is one month of income. A non-positive income yields no entries.
func ComputeCategoryBudgets(expenses []core.Expense, monthlyIncome decimal.Decimal, allocations core.Allocations) []core.CategoryBudget {
	out := []core.CategoryBudget{}
	if !monthlyIncome.IsPositive() {
		return out
	}

	spent := make(map[core.Category]decimal.Decimal)
	for _, e := range expenses {
		c := core.ParseCategory(string(e.Category))
		spent[c] = sumOrZero(spent, c).Add(e.Amount)
	}

	for _, c := range core.Categories() {
		pct := allocations.Percent(c)
		if !pct.IsPositive() {
			continue
		}
		budget := monthlyIncome.Mul(pct).Div(hundred)
		s := sumOrZero(spent, c)
		used := s.Div(budget).Mul(hundred)

		out = append(out, core.CategoryBudget{
			Category:       c,
			Spent:          s,
			Budget:         budget,
			Remaining:      budget.Sub(s),
			PercentageUsed: used.InexactFloat64(),
			Status:         Classify(used),
			Color:          c.Color(),
		})
	}
	return out
}

// Classify maps a percentage of budget used to a status: over above 100,
// near above 90, under otherwise.
func Classify(percentUsed decimal.Decimal) core.BudgetStatus {
	switch {
	case percentUsed.GreaterThan(hundred):
		return core.StatusOver
	case percentUsed.GreaterThan(nearThreshold):
		return core.StatusNear
	default:
		return core.StatusUnder
	}
}

func sumOrZero(m map[core.Category]decimal.Decimal, c core.Category) decimal.Decimal {
	if v, ok := m[c]; ok {
		return v
	}
	return decimal.Zero
}
