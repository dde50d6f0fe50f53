package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

// TrendDays is the length of the dashboard's daily trend.
const TrendDays = 7

// ComputeDashboardStats summarises expenses relative to now. Months and days
// are calendar dates in now's location.
//
// MonthlyChangePercent is the month-over-month difference as a share of the
// all-time total, kept for compatibility with existing dashboards.
func ComputeDashboardStats(expenses []core.Expense, now time.Time) core.DashboardStats {
	today := core.DateOf(now)
	thisMonth := core.NewDate(today.Year(), int(today.Month()), 1)
	lastMonth := core.DateOf(thisMonth.AddDate(0, -1, 0))

	stats := core.DashboardStats{
		Total:                decimal.Zero,
		ThisMonthTotal:       decimal.Zero,
		LastMonthTotal:       decimal.Zero,
		DailyTotalsLast7Days: make([]core.DailyTotal, TrendDays),
	}
	for i := range stats.DailyTotalsLast7Days {
		stats.DailyTotalsLast7Days[i] = core.DailyTotal{
			Date:   today.AddDays(i - (TrendDays - 1)),
			Amount: decimal.Zero,
		}
	}

	for _, e := range expenses {
		stats.Total = stats.Total.Add(e.Amount)
		switch {
		case sameMonth(e.Date, thisMonth):
			stats.ThisMonthTotal = stats.ThisMonthTotal.Add(e.Amount)
		case sameMonth(e.Date, lastMonth):
			stats.LastMonthTotal = stats.LastMonthTotal.Add(e.Amount)
		}
		for i := range stats.DailyTotalsLast7Days {
			day := &stats.DailyTotalsLast7Days[i]
			if e.Date.Equal(day.Date) {
				day.Amount = day.Amount.Add(e.Amount)
				break
			}
		}
	}

	if stats.Total.IsPositive() {
		stats.MonthlyChangePercent = stats.ThisMonthTotal.
			Sub(stats.LastMonthTotal).
			Div(stats.Total).
			Mul(hundred).
			InexactFloat64()
	}
	return stats
}

// RecentExpenses returns up to n expenses, newest date first. Expenses on the
// same date are ordered by creation time, newest first.
func RecentExpenses(expenses []core.Expense, n int) []core.Expense {
	if n <= 0 {
		return []core.Expense{}
	}
	sorted := make([]core.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(a, b int) bool {
		da, db := sorted[a].Date, sorted[b].Date
		if !da.Equal(db) {
			return da.After(db.Time)
		}
		return sorted[a].CreatedAt.After(sorted[b].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func sameMonth(d, month core.Date) bool {
	return d.Year() == month.Year() && d.Month() == month.Month()
}
