package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-outreach/internal/types"
)

// checkpointTimeout bounds a checkpoint write that outlives a cancelled pass.
const checkpointTimeout = 30 * time.Second

// StageReport tallies the resulting status of the rows a stage selected. Pending counts rows
// dispatched on some channels that still await another one.
type StageReport struct {
	Stage    string
	Selected int
	Skipped  int
	Pending  int
	Results  map[types.Status]int
}

func newStageReport(stage string) StageReport {
	return StageReport{Stage: stage, Results: make(map[types.Status]int)}
}

func (r *StageReport) record(s types.Status) {
	r.Results[s]++
}

// Report summarises one pass.
type Report struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	DryRun      bool
	Before      map[types.Status]int
	After       map[types.Status]int
	Stages      []StageReport
	Checkpoints int
}

// Run executes one pass: load, discover contacts, generate content, checkpoint, dispatch, checkpoint.
//
// A ledger error or an error from discovery or generation aborts the pass before anything is written.
// Once dispatch has started the final checkpoint is always attempted, because sent messages cannot be
// recalled; a dispatch error is returned after it. The returned report is never nil.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    p.opts.DryRun,
	}
	defer func() { report.FinishedAt = time.Now() }()

	log := p.log.With("run_id", report.RunID)
	stages := *p
	stages.log = log

	log.Info("pipeline pass started", "use_email", p.opts.UseEmail, "use_linkedin", p.opts.UseLinkedIn,
		"dry_run", p.opts.DryRun)

	table, err := p.deps.Ledger.Load(ctx)
	if err != nil {
		log.Error("failed to load ledger", "error", err)
		return report, fmt.Errorf("load ledger: %w", err)
	}
	report.Before = table.CountByStatus()
	log.Info("ledger loaded", "rows", len(table.Rows))

	discovery, err := stages.DiscoverContacts(ctx, table)
	report.Stages = append(report.Stages, discovery)
	if err != nil {
		log.Error("contact discovery aborted", "error", err)
		return report, fmt.Errorf("%s: %w", StageDiscovery, err)
	}

	generation, err := stages.GenerateContent(ctx, table)
	report.Stages = append(report.Stages, generation)
	if err != nil {
		log.Error("content generation aborted", "error", err)
		return report, fmt.Errorf("%s: %w", StageGeneration, err)
	}

	if err := p.checkpoint(ctx, table); err != nil {
		log.Error("checkpoint after generation failed", "error", err)
		return report, err
	}
	report.Checkpoints++

	if p.opts.DryRun {
		report.After = table.CountByStatus()
		log.Info("dry run: dispatch skipped")
		return report, nil
	}

	dispatch, dispatchErr := stages.Dispatch(ctx, table)
	report.Stages = append(report.Stages, dispatch)
	if dispatchErr != nil {
		log.Error("dispatch finished with errors", "error", dispatchErr)
	}

	if err := p.checkpoint(ctx, table); err != nil {
		log.Error("checkpoint after dispatch failed", "error", err)
		return report, errors.Join(wrapStage(StageDispatch, dispatchErr), err)
	}
	report.Checkpoints++
	report.After = table.CountByStatus()

	if dispatchErr != nil {
		return report, wrapStage(StageDispatch, dispatchErr)
	}
	log.Info("pipeline pass finished", "checkpoints", report.Checkpoints)
	return report, nil
}

// checkpoint overwrites the ledger with the table. The write is not abandoned when ctx is
// cancelled, so progress already made is persisted.
func (p *Pipeline) checkpoint(ctx context.Context, t *types.Table) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), checkpointTimeout)
	defer cancel()
	if err := p.deps.Ledger.Overwrite(writeCtx, t); err != nil {
		return fmt.Errorf("checkpoint ledger: %w", err)
	}
	return nil
}

func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", stage, err)
}
