package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-outreach/internal/ledger"
	"github.com/jonathan/job-outreach/internal/observability"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show how many leads are in each status",
	Long:  "Loads the lead ledger and prints the number of leads per status. The ledger is not modified.",
	RunE:  runStatusCmd,
}

var statusFlags flagOverrides

func init() {
	statusFlags.register(statusCommand)
	rootCmd.AddCommand(statusCommand)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := statusFlags.load(cmd, nil)
	if err != nil {
		return err
	}
	if err := cfg.ValidateLedger(); err != nil {
		return err
	}

	led, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer closeLedger()

	return printStatus(ctx, led, cmd.OutOrStdout())
}

// printStatus loads the table and prints its status counts.
func printStatus(ctx context.Context, led ledger.Ledger, out io.Writer) error {
	table, err := led.Load(ctx)
	if err != nil {
		return err
	}
	observability.NewPrinter(out).PrintStatusCounts("LEAD STATUS", table.CountByStatus())
	return nil
}
