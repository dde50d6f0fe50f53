package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendscan/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(category core.Category, amount string, date core.Date) core.Expense {
	return core.Expense{Category: category, Amount: dec(amount), Date: date}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeCategoryBudgets_NoIncome(t *testing.T) {
	expenses := []core.Expense{expense(core.FoodAndDining, "20.00", core.NewDate(2025, 1, 1))}

	for _, income := range []string{"0", "-100"} {
		got := ComputeCategoryBudgets(expenses, dec(income), core.DefaultAllocations())
		assert.NotNil(t, got)
		assert.Empty(t, got, "income %s", income)
	}
}

func TestComputeCategoryBudgets_Over(t *testing.T) {
	day := core.NewDate(2025, 1, 10)
	expenses := []core.Expense{
		expense(core.FoodAndDining, "120.00", day),
		expense(core.FoodAndDining, "80.00", day.AddDays(-40)),
		expense(core.Travel, "999.00", day),
	}
	alloc := core.Allocations{core.FoodAndDining: dec("15")}

	got := ComputeCategoryBudgets(expenses, dec("1000"), alloc)
	require.Len(t, got, 1)

	b := got[0]
	assert.Equal(t, core.FoodAndDining, b.Category)
	assertDecimal(t, "150.00", b.Budget)
	assertDecimal(t, "200.00", b.Spent)
	assertDecimal(t, "-50.00", b.Remaining)
	assert.InDelta(t, 133.33, b.PercentageUsed, 0.01)
	assert.Equal(t, core.StatusOver, b.Status)
	assert.Equal(t, core.FoodAndDining.Color(), b.Color)
}

func TestComputeCategoryBudgets_DefaultAllocations(t *testing.T) {
	day := core.NewDate(2025, 1, 10)
	expenses := []core.Expense{
		// 110 of 120 for groceries, 50 of 100 for transportation
		expense(core.Groceries, "110.00", day),
		expense(core.Transportation, "50.00", day),
		// both count as Other
		expense("Pets", "10.00", day),
		expense("other", "5.00", day),
	}

	got := ComputeCategoryBudgets(expenses, dec("1000"), core.DefaultAllocations())
	require.Len(t, got, len(core.Categories()))

	for i, c := range core.Categories() {
		assert.Equal(t, c, got[i].Category)
	}

	byCategory := make(map[core.Category]core.CategoryBudget)
	for _, b := range got {
		byCategory[b.Category] = b
	}
	assert.Equal(t, core.StatusNear, byCategory[core.Groceries].Status)
	assert.Equal(t, core.StatusUnder, byCategory[core.Transportation].Status)
	assertDecimal(t, "15.00", byCategory[core.Other].Spent)
	assertDecimal(t, "0", byCategory[core.Education].Spent)
	assert.Equal(t, 0.0, byCategory[core.Education].PercentageUsed)
}

func TestComputeCategoryBudgets_DoesNotMutateInput(t *testing.T) {
	expenses := []core.Expense{expense("food & dining", "10.00", core.NewDate(2025, 1, 1))}
	_ = ComputeCategoryBudgets(expenses, dec("1000"), core.DefaultAllocations())
	assert.Equal(t, core.Category("food & dining"), expenses[0].Category)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		used string
		want core.BudgetStatus
	}{
		{"0", core.StatusUnder},
		{"90", core.StatusUnder},
		{"90.01", core.StatusNear},
		{"100", core.StatusNear},
		{"100.01", core.StatusOver},
		{"250", core.StatusOver},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(dec(tt.used)), "used %s", tt.used)
	}
}
