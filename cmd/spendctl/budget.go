package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendscan/internal/core"
)

func budgetCmd() *cobra.Command {
	var income string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show the category budget table",
		Long: `Prints budget, spent, remaining and status per category for the configured
store. With --income the monthly income is updated first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if income != "" {
				amount, err := core.ParseAmount(income)
				if err != nil {
					return fmt.Errorf("invalid income %q: %w", income, err)
				}
				if err := svc.SetMonthlyIncome(ctx, amount); err != nil {
					return err
				}
			}

			overview, err := svc.Budgets(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monthly income: %s\n\n", core.FormatUSD(overview.MonthlyIncome))
			if len(overview.Budgets) == 0 {
				fmt.Fprintln(out, "No budgets. Set a monthly income with --income.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tBUDGET\tSPENT\tREMAINING\tUSED\tSTATUS")
			for _, b := range overview.Budgets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
					b.Category,
					core.FormatUSD(b.Budget),
					core.FormatUSD(b.Spent),
					core.FormatUSD(b.Remaining),
					b.PercentageUsed,
					b.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&income, "income", "", "set the monthly income before printing, e.g. 4200.00")
	return cmd
}
