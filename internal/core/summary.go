package core

import "github.com/shopspring/decimal"

// BudgetStatus classifies how much of a category budget has been used.
type BudgetStatus string

const (
	StatusUnder BudgetStatus = "under"
	StatusNear  BudgetStatus = "near"
	StatusOver  BudgetStatus = "over"
)

// CategoryBudget is the derived budget position of one category.
type CategoryBudget struct {
	Category       Category        `json:"category"`
	Spent          decimal.Decimal `json:"spent"`
	Budget         decimal.Decimal `json:"budget"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed float64         `json:"percentageUsed"`
	Status         BudgetStatus    `json:"status"`
	Color          string          `json:"color"`
}

// CategoryAggregate is an amount and transaction count aggregated by category.
type CategoryAggregate struct {
	Name   Category        `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
	Color  string          `json:"color"`
}

// DailyTotal is the amount spent on one calendar day.
type DailyTotal struct {
	Date   Date            `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardStats is the headline summary shown on the dashboard.
type DashboardStats struct {
	Total                decimal.Decimal `json:"total"`
	ThisMonthTotal       decimal.Decimal `json:"thisMonthTotal"`
	LastMonthTotal       decimal.Decimal `json:"lastMonthTotal"`
	MonthlyChangePercent float64         `json:"monthlyChangePercent"`
	DailyTotalsLast7Days []DailyTotal    `json:"dailyTotalsLast7Days"`
}

// ExpenseFilter narrows an expense list. Zero fields match everything.
type ExpenseFilter struct {
	Category Category
	From     Date
	To       Date
	Search   string
}

// Report summarises the expenses of a date range.
type Report struct {
	Period        string              `json:"period"`
	From          Date                `json:"from"`
	To            Date                `json:"to"`
	Count         int                 `json:"totalExpenses"`
	Total         decimal.Decimal     `json:"totalAmount"`
	Average       decimal.Decimal     `json:"averageExpense"`
	CategoryCount int                 `json:"categoryCount"`
	Categories    []CategoryAggregate `json:"categories"`
	DailyTrend    []DailyTotal        `json:"dailyTrend"`
}
