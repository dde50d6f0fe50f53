package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

// DefaultReportDays is the span of a report when no range is given.
const DefaultReportDays = 30

// DefaultReportRange returns the range starting DefaultReportDays days before
// today and ending today.
func DefaultReportRange(now time.Time) (from, to core.Date) {
	to = core.DateOf(now)
	return to.AddDays(-DefaultReportDays), to
}

// ComputeReport summarises the expenses dated within [from, to]. A zero bound
// leaves that side open.
func ComputeReport(expenses []core.Expense, from, to core.Date) core.Report {
	in := FilterExpenses(expenses, core.ExpenseFilter{From: from, To: to})

	r := core.Report{
		Period:  periodLabel(from, to),
		From:    from,
		To:      to,
		Count:   len(in),
		Total:   decimal.Zero,
		Average: decimal.Zero,
	}

	daily := make(map[string]decimal.Decimal)
	for _, e := range in {
		r.Total = r.Total.Add(e.Amount)
		key := e.Date.String()
		if v, ok := daily[key]; ok {
			daily[key] = v.Add(e.Amount)
		} else {
			daily[key] = e.Amount
		}
	}
	if r.Count > 0 {
		r.Average = r.Total.Div(decimal.NewFromInt(int64(r.Count))).Round(2)
	}

	r.Categories = ComputeCategoryAggregates(in)
	r.CategoryCount = len(r.Categories)

	r.DailyTrend = make([]core.DailyTotal, 0, len(daily))
	for key, amount := range daily {
		d, err := core.ParseDate(key)
		if err != nil {
			continue
		}
		r.DailyTrend = append(r.DailyTrend, core.DailyTotal{Date: d, Amount: amount})
	}
	sort.Slice(r.DailyTrend, func(a, b int) bool {
		return r.DailyTrend[a].Date.Before(r.DailyTrend[b].Date.Time)
	})
	return r
}

func periodLabel(from, to core.Date) string {
	switch {
	case from.IsZero() && to.IsZero():
		return "all time"
	case from.IsZero():
		return "until " + to.String()
	case to.IsZero():
		return "since " + from.String()
	default:
		return from.String() + " to " + to.String()
	}
}
