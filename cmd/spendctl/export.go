package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spendscan/internal/core"
)

func exportCmd() *cobra.Command {
	var (
		output   string
		category string
		from     string
		to       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses as CSV",
		Long:  `Writes the stored expenses, optionally filtered, as CSV to stdout or a file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := core.ExpenseFilter{Category: core.Category(category)}
			var err error
			if from != "" {
				if filter.From, err = core.ParseDate(from); err != nil {
					return fmt.Errorf("invalid --from %q: %w", from, err)
				}
			}
			if to != "" {
				if filter.To, err = core.ParseDate(to); err != nil {
					return fmt.Errorf("invalid --to %q: %w", to, err)
				}
			}

			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			return svc.ExportCSV(cmd.Context(), out, filter)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&category, "category", "", "only export this category")
	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")
	return cmd
}
