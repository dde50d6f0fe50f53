package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed spending categories.
type Category string

const (
	FoodAndDining  Category = "Food & Dining"
	Transportation Category = "Transportation"
	Groceries      Category = "Groceries"
	Entertainment  Category = "Entertainment"
	Healthcare     Category = "Healthcare"
	Shopping       Category = "Shopping"
	Utilities      Category = "Utilities"
	Travel         Category = "Travel"
	Education      Category = "Education"
	Other          Category = "Other"
)

type categoryInfo struct {
	category Category
	color    string
	percent  int64
}

// categoryTable is the single source for order, palette and default allocation.
var categoryTable = []categoryInfo{
	{FoodAndDining, "#EF4444", 15},
	{Transportation, "#3B82F6", 10},
	{Groceries, "#10B981", 12},
	{Entertainment, "#8B5CF6", 8},
	{Healthcare, "#F59E0B", 8},
	{Shopping, "#EC4899", 10},
	{Utilities, "#6B7280", 12},
	{Travel, "#06B6D4", 5},
	{Education, "#84CC16", 5},
	{Other, "#64748B", 15},
}

var categoryIndex = func() map[string]int {
	idx := make(map[string]int, len(categoryTable))
	for i, c := range categoryTable {
		idx[normalizeCategoryKey(string(c.category))] = i
	}
	return idx
}()

// Categories returns the fixed categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	for i, c := range categoryTable {
		out[i] = c.category
	}
	return out
}

// ParseCategory maps s onto the fixed set; unknown names become Other.
func ParseCategory(s string) Category {
	if c, ok := LookupCategory(s); ok {
		return c
	}
	return Other
}

// LookupCategory returns the canonical spelling of s, ignoring case and
// spacing, and whether s names one of the fixed categories.
func LookupCategory(s string) (Category, bool) {
	if i, ok := categoryIndex[normalizeCategoryKey(s)]; ok {
		return categoryTable[i].category, true
	}
	return "", false
}

// IsKnown reports whether c is spelled exactly as one of the fixed categories.
func (c Category) IsKnown() bool {
	i, ok := categoryIndex[normalizeCategoryKey(string(c))]
	return ok && categoryTable[i].category == c
}

// Color returns the chart colour for c, falling back to Other's colour.
func (c Category) Color() string {
	if i, ok := categoryIndex[normalizeCategoryKey(string(c))]; ok {
		return categoryTable[i].color
	}
	return categoryTable[len(categoryTable)-1].color
}

func (c Category) String() string {
	return string(c)
}

// DefaultAllocations is the stock share of monthly income per category, in percent.
func DefaultAllocations() Allocations {
	out := make(Allocations, len(categoryTable))
	for _, c := range categoryTable {
		out[c.category] = decimal.NewFromInt(c.percent)
	}
	return out
}

// Allocations maps a category to its budget share of monthly income, in percent.
type Allocations map[Category]decimal.Decimal

// Percent returns the allocation for c, zero when unset.
func (a Allocations) Percent(c Category) decimal.Decimal {
	if p, ok := a[c]; ok {
		return p
	}
	return decimal.Zero
}

func normalizeCategoryKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
