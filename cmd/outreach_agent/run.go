package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-outreach/internal/config"
	"github.com/jonathan/job-outreach/internal/observability"
	"github.com/jonathan/job-outreach/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one outreach pass over the lead ledger",
	Long: `Loads the ledger and advances every lead by one step: contact discovery -> content generation -> checkpoint -> dispatch -> checkpoint.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values,
and credentials missing from both are read from the environment.`,
	RunE: runPassCmd,
}

// runOptions holds the flag values of the run command.
type runOptions struct {
	flagOverrides
	useEmail         bool
	useLinkedIn      bool
	interactive      bool
	dryRun           bool
	extractEmails    bool
	scrapePostings   bool
	useBrowser       bool
	apiKey           string
	model            string
	emailAddress     string
	emailPassword    string
	linkedInUsername string
	linkedInPassword string
	archive          string
	archiveFolder    string
}

var runOpts runOptions

func init() {
	runOpts.registerRun(runCommand)
	rootCmd.AddCommand(runCommand)
}

func (o *runOptions) registerRun(cmd *cobra.Command) {
	o.register(cmd)

	cmd.Flags().BoolVar(&o.useEmail, "use-email", false, "Send outreach emails")
	cmd.Flags().BoolVar(&o.useLinkedIn, "use-linkedin", false, "Send LinkedIn connection requests")
	cmd.Flags().BoolVar(&o.interactive, "interactive", false, "Show the browser and wait for login challenges to be solved")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Discover contacts and generate content, but send nothing")
	cmd.Flags().BoolVar(&o.extractEmails, "extract-emails", false, "Ask the model for an address in free-text contact details")
	cmd.Flags().BoolVar(&o.scrapePostings, "scrape-postings", false, "Look for a contact address on the job posting page")
	cmd.Flags().BoolVar(&o.useBrowser, "use-browser", false, "Render thin posting pages in a headless browser (requires Chrome)")
	cmd.Flags().StringVar(&o.archive, "archive", "", "Document archive: drive, local or none")
	cmd.Flags().StringVar(&o.archiveFolder, "archive-folder", "", "Archive root folder")

	// Credentials can be passed as flags, or read from the environment
	cmd.Flags().StringVar(&o.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&o.model, "model", "", "Model used for content generation")
	cmd.Flags().StringVar(&o.emailAddress, "email-address", "", "Sender address (defaults to GMAIL_ADDRESS env var)")
	cmd.Flags().StringVar(&o.emailPassword, "email-password", "", "Sender app password (defaults to GMAIL_PASSWORD env var)")
	cmd.Flags().StringVar(&o.linkedInUsername, "linkedin-username", "", "LinkedIn username (defaults to LINKEDIN_USERNAME env var)")
	cmd.Flags().StringVar(&o.linkedInPassword, "linkedin-password", "", "LinkedIn password (defaults to LINKEDIN_PASSWORD env var)")
}

// loadConfig resolves the configuration for a pass: file, then flags, then environment, then defaults.
func (o *runOptions) loadConfig(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	cfg, err := o.load(cmd, func(string) string { return "" })
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	for _, b := range []struct {
		name  string
		dst   *bool
		value bool
	}{
		{"use-email", &cfg.UseEmail, o.useEmail},
		{"use-linkedin", &cfg.UseLinkedIn, o.useLinkedIn},
		{"interactive", &cfg.Interactive, o.interactive},
		{"extract-emails", &cfg.ExtractEmails, o.extractEmails},
		{"scrape-postings", &cfg.ScrapePostings, o.scrapePostings},
		{"use-browser", &cfg.UseBrowser, o.useBrowser},
	} {
		if flags.Changed(b.name) {
			*b.dst = b.value
		}
	}
	for _, s := range []struct {
		name  string
		dst   *string
		value string
	}{
		{"api-key", &cfg.APIKey, o.apiKey},
		{"model", &cfg.Model, o.model},
		{"email-address", &cfg.EmailAddress, o.emailAddress},
		{"email-password", &cfg.EmailPassword, o.emailPassword},
		{"linkedin-username", &cfg.LinkedInUsername, o.linkedInUsername},
		{"linkedin-password", &cfg.LinkedInPassword, o.linkedInPassword},
		{"archive", &cfg.Archive, o.archive},
		{"archive-folder", &cfg.ArchiveFolder, o.archiveFolder},
	} {
		if flags.Changed(s.name) {
			*s.dst = s.value
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.ApplyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runPassCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := runOpts.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	if runOpts.configPath != "" {
		log.Debug("loaded config", "path", runOpts.configPath)
	}

	opts, err := pipelineOptions(cfg, runOpts.dryRun)
	if err != nil {
		return err
	}

	deps, cleanup, err := buildDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return executePass(ctx, deps, opts, cfg.Verbose, cmd.OutOrStdout())
}

// executePass runs one pass and prints the summary. Verbose output adds the per-row outcomes.
func executePass(ctx context.Context, deps pipeline.Dependencies, opts pipeline.Options, verbose bool, out io.Writer) error {
	var events []pipeline.ProgressEvent
	if verbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			events = append(events, e)
		}
	}

	p, err := pipeline.New(deps, opts)
	if err != nil {
		return err
	}

	report, runErr := p.Run(ctx)

	printer := observability.NewPrinter(out)
	if verbose {
		printer.PrintEvents(events)
	}
	printer.PrintRunReport(report)

	if runErr != nil {
		return fmt.Errorf("pipeline failed: %w", runErr)
	}
	return nil
}
