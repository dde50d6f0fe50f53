package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spendscan/internal/core"
)

func TestKeywordCategorizer(t *testing.T) {
	tests := []struct {
		text string
		want core.Category
	}{
		{"Joe's Pizza\nMargherita 12.00", core.FoodAndDining},
		{"FRESHCO SUPERMARKET", core.Groceries},
		{"Shell Gas Station\nUnleaded 45.10", core.Transportation},
		{"CVS Pharmacy", core.Healthcare},
		{"Outlet Mall", core.Shopping},
		{"AMC Cinema", core.Entertainment},
		{"City Electric Co", core.Utilities},
		{"Airport Hotel", core.Travel},
		{"State University Bookstore", core.Education},
		{"Cafeteria", core.Other},
		{"Random text 1.00", core.Other},
		{"", core.Other},
	}

	var c KeywordCategorizer
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Categorize(tt.text), "text %q", tt.text)
	}
}

func TestKeywordCategorizer_OrderDecidesTies(t *testing.T) {
	// "food" and "market" both match; Food & Dining is checked first.
	assert.Equal(t, core.FoodAndDining, KeywordCategorizer{}.Categorize("Food Market"))
}
