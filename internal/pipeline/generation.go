package pipeline

import (
	"context"

	"github.com/jonathan/job-outreach/internal/archive"
	"github.com/jonathan/job-outreach/internal/content"
	"github.com/jonathan/job-outreach/internal/rendering"
	"github.com/jonathan/job-outreach/internal/types"
)

// GenerateContent fills the six content fields of every New Job or Contact Required row that has a contact.
// Each row succeeds or fails on its own: a generation error sets the row to the generation
// failure state and leaves its content columns untouched. Documents of generated rows are
// archived on a best-effort basis. Only a cancelled context fails the stage.
func (p *Pipeline) GenerateContent(ctx context.Context, t *types.Table) (StageReport, error) {
	report := newStageReport(StageGeneration)
	leads := Select(t, func(l types.Lead) bool {
		s := l.Status()
		return (s == types.StatusNewJob || s == types.StatusContactRequired) && l.HasContact()
	})
	report.Selected = len(leads)

	for _, l := range leads {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		message, err := p.generateLead(ctx, &l)
		if err != nil {
			return report, err
		}

		if err := t.Merge(l); err != nil {
			return report, err
		}
		report.record(l.Status())
		p.emit(StageGeneration, l, message)
	}

	p.log.Info("content generation finished", "selected", report.Selected,
		"generated", report.Results[types.StatusContentGenerated],
		"failed", report.Results[types.StatusGenerationFailed])
	return report, nil
}

// generateLead updates l in place. The returned error is non-nil only when ctx is done.
func (p *Pipeline) generateLead(ctx context.Context, l *types.Lead) (string, error) {
	if l.HasAllContent() {
		l.SetStatus(types.StatusContentGenerated)
		return "content already present", nil
	}

	bundle, err := p.deps.Generator.Generate(ctx, types.RequestFromLead(*l, p.opts.Templates))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		l.SetStatus(types.StatusGenerationFailed)
		p.log.Warn("content generation failed", append(leadAttrs(*l), "error", err)...)
		return err.Error(), nil
	}

	fit, err := content.FitNote(ctx, p.deps.Generator, bundle.LinkedInNote, p.opts.NoteLimit, p.opts.MaxShortenAttempts)
	if err != nil {
		return "", err
	}
	if fit.Attempts > 0 || fit.Truncated {
		p.log.Debug("linkedin note shortened", append(leadAttrs(*l),
			"attempts", fit.Attempts, "truncated", fit.Truncated, "length", content.NoteLength(fit.Note))...)
	}
	bundle.LinkedInNote = fit.Note

	l.ApplyContent(bundle)
	l.SetStatus(types.StatusContentGenerated)
	p.log.Info("content generated", leadAttrs(*l)...)

	p.archiveLead(ctx, *l)
	return "content generated", nil
}

// archiveLead renders and uploads the lead's documents. Failures are logged only.
func (p *Pipeline) archiveLead(ctx context.Context, l types.Lead) {
	if p.deps.Archiver == nil {
		return
	}

	files, err := rendering.RenderDocuments(l, p.opts.Templates, p.opts.ResumeFormat)
	if err != nil {
		p.log.Warn("document rendering failed", append(leadAttrs(l), "error", err)...)
		return
	}

	folder := archive.FolderKey(l.Value(types.FieldCompanyName), l.Value(types.FieldPosition))
	if err := p.deps.Archiver.Upload(ctx, folder, files); err != nil {
		p.log.Warn("archival failed", append(leadAttrs(l), "folder", folder, "error", err)...)
		return
	}
	p.log.Debug("documents archived", append(leadAttrs(l), "folder", folder, "files", len(files))...)
}
