package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/job-outreach/internal/archive"
	"github.com/jonathan/job-outreach/internal/channel"
	"github.com/jonathan/job-outreach/internal/config"
	"github.com/jonathan/job-outreach/internal/contacts"
	"github.com/jonathan/job-outreach/internal/content"
	"github.com/jonathan/job-outreach/internal/fetch"
	"github.com/jonathan/job-outreach/internal/ledger"
	"github.com/jonathan/job-outreach/internal/llm"
	"github.com/jonathan/job-outreach/internal/logging"
	"github.com/jonathan/job-outreach/internal/pipeline"
)

// newLogger builds the process logger from the configuration.
func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
}

// openLedger connects to the configured ledger backend. The returned func releases it.
func openLedger(ctx context.Context, cfg config.Config) (ledger.Ledger, func(), error) {
	switch cfg.Ledger {
	case config.LedgerPostgres:
		pg, err := ledger.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.LedgerTable)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.LedgerSheets, "":
		sh, err := ledger.NewSheets(ctx, ledger.SheetsConfig{
			CredentialsFile: cfg.CredentialsFile,
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
			Worksheet:       cfg.Worksheet,
		})
		if err != nil {
			return nil, nil, err
		}
		return sh, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger)
	}
}

// newArchiver returns the configured document archiver, or nil when archiving is off.
func newArchiver(ctx context.Context, cfg config.Config) (archive.Archiver, error) {
	switch cfg.Archive {
	case config.ArchiveDrive:
		d, err := archive.NewDrive(ctx, cfg.CredentialsFile, cfg.ArchiveFolder)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.ArchiveLocal:
		return archive.NewLocal(cfg.ArchiveFolder), nil
	case config.ArchiveNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Archive)
	}
}

// llmConfig returns the model configuration, with the configured model on the advanced tier.
func llmConfig(cfg config.Config) *llm.Config {
	c := llm.DefaultConfig()
	if cfg.Model != "" {
		c = c.WithModel(llm.TierAdvanced, cfg.Model)
	}
	return c
}

// buildDependencies constructs every collaborator the pass needs. The returned func releases them.
func buildDependencies(ctx context.Context, cfg config.Config, log *slog.Logger) (pipeline.Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	led, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return pipeline.Dependencies{}, nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	closers = append(closers, closeLedger)

	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		cleanup()
		return pipeline.Dependencies{}, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closers = append(closers, func() { _ = client.Close() })

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		cleanup()
		return pipeline.Dependencies{}, nil, fmt.Errorf("failed to create archiver: %w", err)
	}

	deps := pipeline.Dependencies{
		Ledger:    led,
		Generator: content.NewLLMGenerator(client, cfg.NoteLimit),
		Archiver:  archiver,
		Logger:    log,
	}

	if cfg.UseEmail {
		deps.Email = channel.NewSMTP(channel.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailAddress,
			Password: cfg.EmailPassword,
			FromName: cfg.SenderName,
		})
	}
	if cfg.UseLinkedIn {
		deps.Network = channel.NewLinkedInBrowser(channel.LinkedInConfig{
			Interactive:      cfg.Interactive,
			ExecPath:         cfg.ChromePath,
			ChallengeTimeout: cfg.Challenge(),
		})
	}
	if cfg.ScrapePostings {
		opts := fetch.DefaultOptions()
		opts.UseBrowser = cfg.UseBrowser
		deps.Scraper = contacts.NewScraper(opts)
	}

	return deps, cleanup, nil
}

// pipelineOptions maps the configuration onto pass options.
func pipelineOptions(cfg config.Config, dryRun bool) (pipeline.Options, error) {
	templates, resumeFormat, err := cfg.LoadTemplates()
	if err != nil {
		return pipeline.Options{}, err
	}

	delay := cfg.Delay()
	if delay == 0 {
		// an explicit "0s" turns the pause off
		delay = -1
	}

	return pipeline.Options{
		UseEmail:           cfg.UseEmail,
		UseLinkedIn:        cfg.UseLinkedIn,
		LinkedInUsername:   cfg.LinkedInUsername,
		LinkedInPassword:   cfg.LinkedInPassword,
		Templates:          templates,
		ResumeFormat:       resumeFormat,
		NoteLimit:          cfg.NoteLimit,
		MaxShortenAttempts: cfg.ShortenAttempts,
		RequestDelay:       delay,
		ExtractEmails:      cfg.ExtractEmails,
		ScrapePostings:     cfg.ScrapePostings,
		DryRun:             dryRun,
	}, nil
}
