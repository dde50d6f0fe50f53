package budget

import (
	"strings"

	"spendscan/internal/core"
)

// FilterExpenses returns the expenses matching every non-zero field of f, in
// input order. From and To are inclusive; Search is a case-insensitive
// substring of the description.
func FilterExpenses(expenses []core.Expense, f core.ExpenseFilter) []core.Expense {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var category core.Category
	if strings.TrimSpace(string(f.Category)) != "" {
		category = aggregateKey(f.Category)
	}

	out := []core.Expense{}
	for _, e := range expenses {
		if category != "" && aggregateKey(e.Category) != category {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From.Time) {
			continue
		}
		if !f.To.IsZero() && e.Date.After(f.To.Time) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}
