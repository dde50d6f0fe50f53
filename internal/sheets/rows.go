package sheets

import (
	"strconv"

	"spendscan/internal/core"
)

var (
	BudgetHeader   = []any{"Category", "Budget", "Spent", "Remaining", "Used %", "Status"}
	CategoryHeader = []any{"Category", "Amount", "Transactions"}
)

// BudgetRows renders budgets as sheet rows, header first. Money is written as
// plain numbers so the sheet can format and sum it.
func BudgetRows(budgets []core.CategoryBudget) [][]any {
	rows := make([][]any, 0, len(budgets)+1)
	rows = append(rows, BudgetHeader)
	for _, b := range budgets {
		rows = append(rows, []any{
			b.Category.String(),
			b.Budget.StringFixed(2),
			b.Spent.StringFixed(2),
			b.Remaining.StringFixed(2),
			fmtPercent(b.PercentageUsed),
			string(b.Status),
		})
	}
	return rows
}

// CategoryRows renders aggregates as sheet rows, header first.
func CategoryRows(aggregates []core.CategoryAggregate) [][]any {
	rows := make([][]any, 0, len(aggregates)+1)
	rows = append(rows, CategoryHeader)
	for _, a := range aggregates {
		rows = append(rows, []any{a.Name.String(), a.Amount.StringFixed(2), a.Count})
	}
	return rows
}

func fmtPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
