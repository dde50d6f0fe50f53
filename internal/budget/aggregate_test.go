package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendscan/internal/core"
)

func TestComputeCategoryAggregates(t *testing.T) {
	day := core.NewDate(2025, 1, 1)
	expenses := []core.Expense{
		expense("A", "10", day),
		expense("B", "30", day),
		expense("A", "5", day),
	}

	got := ComputeCategoryAggregates(expenses)
	require.Len(t, got, 2)

	assert.Equal(t, core.Category("B"), got[0].Name)
	assertDecimal(t, "30", got[0].Amount)
	assert.Equal(t, 1, got[0].Count)

	assert.Equal(t, core.Category("A"), got[1].Name)
	assertDecimal(t, "15", got[1].Amount)
	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, core.Other.Color(), got[1].Color)
}

func TestComputeCategoryAggregates_TiesKeepFirstSeen(t *testing.T) {
	day := core.NewDate(2025, 1, 1)
	expenses := []core.Expense{
		expense(core.Travel, "10.00", day),
		expense(core.Groceries, "10.00", day),
		expense(core.Shopping, "10.00", day),
		expense(core.Healthcare, "20.00", day),
	}

	got := ComputeCategoryAggregates(expenses)
	require.Len(t, got, 4)
	names := []core.Category{got[0].Name, got[1].Name, got[2].Name, got[3].Name}
	assert.Equal(t, []core.Category{core.Healthcare, core.Travel, core.Groceries, core.Shopping}, names)
}

func TestComputeCategoryAggregates_CanonicalNames(t *testing.T) {
	day := core.NewDate(2025, 1, 1)
	expenses := []core.Expense{
		expense("groceries", "1.00", day),
		expense(core.Groceries, "2.00", day),
		expense("  ", "4.00", day),
	}

	got := ComputeCategoryAggregates(expenses)
	require.Len(t, got, 2)
	assert.Equal(t, core.Other, got[0].Name)
	assert.Equal(t, core.Groceries, got[1].Name)
	assertDecimal(t, "3.00", got[1].Amount)
	assert.Equal(t, "#10B981", got[1].Color)
}

func TestComputeCategoryAggregates_Empty(t *testing.T) {
	got := ComputeCategoryAggregates(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
