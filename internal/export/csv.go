package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"spendscan/internal/core"
)

// Header is the column layout of the expense CSV export.
var Header = []string{"Date", "Description", "Category", "Amount"}

// WriteCSV writes one row per expense with amounts fixed to two decimals.
func WriteCSV(out io.Writer, expenses []core.Expense) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range expenses {
		row := []string{
			e.Date.String(),
			e.Description,
			string(e.Category),
			e.Amount.StringFixed(2),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write expense %s: %w", e.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
