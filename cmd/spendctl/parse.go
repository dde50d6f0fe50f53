package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spendscan/internal/receipt"
)

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse OCR receipt text into an expense draft",
		Long: `Reads OCR text from file, or from stdin when no file is given, and prints
the extracted expense draft as JSON. Nothing is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open receipt: %w", err)
				}
				defer f.Close()
				in = f
			}

			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read receipt: %w", err)
			}

			draft := receipt.NewParser().Parse(string(text))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(draft)
		},
	}
}
