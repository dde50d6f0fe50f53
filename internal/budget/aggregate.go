package budget

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

// ComputeCategoryAggregates groups expenses by category, summing amounts and
// counting records. The result is ordered by descending amount; ties keep the
// order in which categories were first seen.
func ComputeCategoryAggregates(expenses []core.Expense) []core.CategoryAggregate {
	out := []core.CategoryAggregate{}
	index := make(map[core.Category]int)

	for _, e := range expenses {
		name := aggregateKey(e.Category)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, core.CategoryAggregate{
				Name:   name,
				Amount: decimal.Zero,
				Color:  name.Color(),
			})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
		out[i].Count++
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Amount.GreaterThan(out[b].Amount)
	})
	return out
}

// aggregateKey canonicalises known categories and keeps unknown names as
// recorded. Blank names fall into Other.
func aggregateKey(c core.Category) core.Category {
	if known, ok := core.LookupCategory(string(c)); ok {
		return known
	}
	if name := strings.TrimSpace(string(c)); name != "" {
		return core.Category(name)
	}
	return core.Other
}
