// Package pipeline runs the status-driven outreach pass over the lead table:
// contact discovery, content generation and dispatch, with checkpoints to the ledger.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/job-outreach/internal/archive"
	"github.com/jonathan/job-outreach/internal/channel"
	"github.com/jonathan/job-outreach/internal/content"
	"github.com/jonathan/job-outreach/internal/ledger"
	"github.com/jonathan/job-outreach/internal/logging"
	"github.com/jonathan/job-outreach/internal/rendering"
	"github.com/jonathan/job-outreach/internal/types"
)

// Stage names.
const (
	StageDiscovery  = "contact_discovery"
	StageGeneration = "content_generation"
	StageDispatch   = "dispatch"
)

// DefaultRequestDelay is the pause between successful connection requests.
const DefaultRequestDelay = 5 * time.Second

// EmailFinder looks up a contact address for a job posting URL.
type EmailFinder interface {
	FindEmail(ctx context.Context, url string) (string, error)
}

// Dependencies are the external collaborators of a pass.
type Dependencies struct {
	Ledger    ledger.Ledger
	Generator content.Generator
	Archiver  archive.Archiver      // optional; documents are not archived when nil
	Email     channel.EmailDialer   // required when UseEmail is set
	Network   channel.NetworkDialer // required when UseLinkedIn is set
	Scraper   EmailFinder           // optional; used when ScrapePostings is set
	Logger    *slog.Logger
}

// Options configures a pass.
type Options struct {
	UseEmail         bool
	UseLinkedIn      bool
	LinkedInUsername string
	LinkedInPassword string

	Templates    types.Templates
	ResumeFormat rendering.Format

	NoteLimit          int           // defaults to content.DefaultNoteLimit
	MaxShortenAttempts int           // defaults to content.DefaultMaxShortenAttempts
	RequestDelay       time.Duration // defaults to DefaultRequestDelay; negative disables it

	ExtractEmails  bool // ask the generator for an address found in Contact Details
	ScrapePostings bool // look for an address on the posting page
	DryRun         bool // stop after the generation checkpoint

	OnProgress ProgressCallback
}

// ProgressEvent reports the outcome of one row in one stage.
type ProgressEvent struct {
	Stage   string
	Row     int
	Lead    string
	Status  types.Status
	Message string
}

// ProgressCallback is called for each row a stage finishes with.
type ProgressCallback func(event ProgressEvent)

// ConfigError reports a missing collaborator or setting; it is returned before any stage runs.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pipeline configuration error: %s", e.Message)
}

// Pipeline owns the in-memory table for the duration of one pass.
type Pipeline struct {
	deps  Dependencies
	opts  Options
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates the dependencies against the options and fills defaults.
func New(deps Dependencies, opts Options) (*Pipeline, error) {
	switch {
	case deps.Ledger == nil:
		return nil, &ConfigError{Message: "ledger is required"}
	case deps.Generator == nil:
		return nil, &ConfigError{Message: "content generator is required"}
	case opts.UseEmail && deps.Email == nil:
		return nil, &ConfigError{Message: "email channel is enabled but no email dialer is configured"}
	case opts.UseLinkedIn && deps.Network == nil:
		return nil, &ConfigError{Message: "linkedin channel is enabled but no network dialer is configured"}
	case opts.UseLinkedIn && (opts.LinkedInUsername == "" || opts.LinkedInPassword == ""):
		return nil, &ConfigError{Message: "linkedin channel requires a username and password"}
	case opts.ScrapePostings && deps.Scraper == nil:
		return nil, &ConfigError{Message: "posting scraping is enabled but no scraper is configured"}
	}

	if opts.NoteLimit <= 0 {
		opts.NoteLimit = content.DefaultNoteLimit
	}
	if opts.MaxShortenAttempts <= 0 {
		opts.MaxShortenAttempts = content.DefaultMaxShortenAttempts
	}
	if opts.RequestDelay == 0 {
		opts.RequestDelay = DefaultRequestDelay
	}
	if opts.ResumeFormat == "" {
		opts.ResumeFormat = rendering.FormatText
	}

	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Pipeline{deps: deps, opts: opts, log: log, sleep: sleepContext}, nil
}

func (p *Pipeline) emit(stage string, l types.Lead, message string) {
	if p.opts.OnProgress == nil {
		return
	}
	p.opts.OnProgress(ProgressEvent{
		Stage:   stage,
		Row:     l.Row,
		Lead:    l.Label(),
		Status:  l.Status(),
		Message: message,
	})
}

func leadAttrs(l types.Lead) []any {
	return []any{
		"row", l.Row,
		"company", l.Value(types.FieldCompanyName),
		"position", l.Value(types.FieldPosition),
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
