// Package main provides the entry point for the job outreach agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Job application outreach pipeline",
	Long: `Outreach Agent works through a ledger of job leads: it finds a contact for each posting, generates a tailored
cover letter, resume summary, email and connection note, archives the documents, and sends the outreach by email
and LinkedIn. Each lead's Status column decides which step runs next, so a run can be repeated safely.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
