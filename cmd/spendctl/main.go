package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spendscan/internal/cli"
	"spendscan/internal/config"
	"spendscan/internal/log"
	"spendscan/internal/services"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spendctl",
		Short: "Receipt parsing and budget tooling for spendscan",
		Long: `spendctl parses OCR receipt text into expense drafts and inspects the
budgets and expenses kept by a spendscan store.`,
		SilenceUsage: true,
	}

	root.AddCommand(parseCmd())
	root.AddCommand(budgetCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(sheetsCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService opens the configured store and wraps it in an ExpenseService.
// Scans are never queued from the CLI.
func openService() (*services.ExpenseService, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.New(log.Config{Level: slog.LevelWarn, Output: os.Stderr, Component: log.ComponentApp})

	store, err := cli.OpenStore(logger, cfg)
	if err != nil {
		return nil, err
	}
	return services.NewExpenseService(store, nil), nil
}
