package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-outreach/internal/config"
)

// flagOverrides holds the flag values shared by the commands that open the ledger.
type flagOverrides struct {
	configPath      string
	ledger          string
	spreadsheetID   string
	sheetName       string
	worksheet       string
	credentialsFile string
	databaseURL     string
	logLevel        string
	logFormat       string
	verbose         bool
}

func (f *flagOverrides) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a .json or .yaml config file (values can be overridden by other flags)")

	cmd.Flags().StringVar(&f.ledger, "ledger", "", "Ledger backend: sheets or postgres")
	cmd.Flags().StringVar(&f.spreadsheetID, "spreadsheet-id", "", "Google spreadsheet id (takes precedence over --sheet-name)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "Google spreadsheet name, looked up through Drive")
	cmd.Flags().StringVar(&f.worksheet, "worksheet", "", "Worksheet holding the lead table")
	cmd.Flags().StringVar(&f.credentialsFile, "credentials", "", "Google service account key (defaults to GOOGLE_API_CREDENTIALS_FILE env var)")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: console or json")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print a detailed summary")
}

// load reads the config file, applies explicitly set flags, then the environment, then defaults.
func (f *flagOverrides) load(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	for _, o := range []struct {
		name  string
		dst   *string
		value string
	}{
		{"ledger", &cfg.Ledger, f.ledger},
		{"spreadsheet-id", &cfg.SpreadsheetID, f.spreadsheetID},
		{"sheet-name", &cfg.SheetName, f.sheetName},
		{"worksheet", &cfg.Worksheet, f.worksheet},
		{"credentials", &cfg.CredentialsFile, f.credentialsFile},
		{"db-url", &cfg.DatabaseURL, f.databaseURL},
		{"log-level", &cfg.LogLevel, f.logLevel},
		{"log-format", &cfg.LogFormat, f.logFormat},
	} {
		if flags.Changed(o.name) {
			*o.dst = o.value
		}
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.ApplyEnv(getenv)
	return cfg.MergeWithDefaults(config.Config{}), nil
}
