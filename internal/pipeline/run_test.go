package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-outreach/internal/channel"
	"github.com/jonathan/job-outreach/internal/types"
)

func TestNew_ConfigErrors(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name string
		deps Dependencies
		opts Options
	}{
		{"no ledger", Dependencies{Generator: f.generator}, Options{}},
		{"no generator", Dependencies{Ledger: f.ledger}, Options{}},
		{"email without dialer", Dependencies{Ledger: f.ledger, Generator: f.generator}, Options{UseEmail: true}},
		{"linkedin without dialer", Dependencies{Ledger: f.ledger, Generator: f.generator}, Options{UseLinkedIn: true, LinkedInUsername: "u", LinkedInPassword: "p"}},
		{"linkedin without credentials", Dependencies{Ledger: f.ledger, Generator: f.generator, Network: f.network}, Options{UseLinkedIn: true}},
		{"scraping without scraper", Dependencies{Ledger: f.ledger, Generator: f.generator}, Options{ScrapePostings: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.deps, tt.opts)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	f := newFixture()
	p, err := New(Dependencies{Ledger: f.ledger, Generator: f.generator}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 300, p.opts.NoteLimit)
	assert.Equal(t, 3, p.opts.MaxShortenAttempts)
	assert.Equal(t, DefaultRequestDelay, p.opts.RequestDelay)
	assert.NotNil(t, p.log)
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(
		row("Acme", types.FieldEmail, "a@b.com", types.FieldStatus, "New Job"),
		row("NoContact"),
		row("Globex", types.FieldEmail, "g@globex.io"),
		map[string]string{},
	)
	f.generator.FailFor = map[string]bool{"Globex": true}
	p := f.pipeline(t, Options{UseEmail: true})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	tbl := f.ledger.Table()
	assert.Equal(t, types.StatusEmailSent, tbl.Rows[0].Status())
	assert.Equal(t, types.StatusContactRequired, tbl.Rows[1].Status())
	assert.Equal(t, types.StatusGenerationFailed, tbl.Rows[2].Status())
	assert.Equal(t, "", tbl.Rows[3].Get(types.FieldStatus))
	for _, field := range types.ContentFields {
		assert.NotEmpty(t, tbl.Rows[0].Get(field))
	}

	require.Len(t, f.ledger.Checkpoints, 2, "checkpoint after generation and after dispatch")
	first := f.ledger.Checkpoints[0]
	assert.Equal(t, types.StatusContentGenerated, first.Rows[0].Status())

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Checkpoints)
	assert.Equal(t, 3, report.Before[types.StatusNewJob])
	assert.Equal(t, 1, report.After[types.StatusEmailSent])
	require.Len(t, report.Stages, 3)
	assert.Equal(t, StageDispatch, report.Stages[2].Stage)
}

func TestRun_IdempotentReentry(t *testing.T) {
	f := newFixture(
		row("Acme", types.FieldEmail, "a@acme.io"),
		row("Globex", types.FieldLinkedInContact, "https://linkedin.com/in/g"),
	)
	p := f.pipeline(t, Options{UseEmail: true, UseLinkedIn: true})

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	firstPass := f.ledger.Table()

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	secondPass := f.ledger.Table()

	assert.Len(t, f.email.Sent, 1)
	assert.Len(t, f.network.Sent, 1)
	assert.Len(t, f.generator.Requests, 2)
	for i := range firstPass.Rows {
		assert.Equal(t, firstPass.Rows[i].Status(), secondPass.Rows[i].Status())
		assert.True(t, secondPass.Rows[i].Status().IsSent())
	}
}

func TestRun_DryRunSkipsDispatch(t *testing.T) {
	f := newFixture(row("Acme", types.FieldEmail, "a@acme.io"))
	p := f.pipeline(t, Options{UseEmail: true, DryRun: true})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, f.ledger.Checkpoints, 1)
	assert.Zero(t, f.email.Dials)
	assert.Equal(t, types.StatusContentGenerated, f.ledger.Table().Rows[0].Status())
}

func TestRun_LoadFailure(t *testing.T) {
	f := newFixture(row("Acme"))
	f.ledger.LoadErr = errors.New("sheets API unavailable")
	p := f.pipeline(t, Options{})

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.NotNil(t, report)
	assert.Contains(t, err.Error(), "load ledger")
	assert.Empty(t, f.ledger.Checkpoints)
	assert.Empty(t, f.generator.Requests)
}

func TestRun_FirstCheckpointFailureAbortsDispatch(t *testing.T) {
	f := newFixture(row("Acme", types.FieldEmail, "a@acme.io"))
	f.ledger.FailOverwriteAt = 1
	p := f.pipeline(t, Options{UseEmail: true})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint")
	assert.Zero(t, f.email.Dials)
	assert.Equal(t, types.StatusNewJob, f.ledger.Table().Rows[0].Status())
}

func TestRun_DispatchErrorStillCheckpoints(t *testing.T) {
	f := newFixture(
		row("Acme", types.FieldEmail, "a@acme.io"),
		row("Globex", types.FieldLinkedInContact, "https://linkedin.com/in/g"),
	)
	f.network.LoginErr = &channel.LoginError{Channel: channel.LinkedIn, Message: "captcha"}
	p := f.pipeline(t, Options{UseEmail: true, UseLinkedIn: true})

	report, err := p.Run(context.Background())
	require.Error(t, err)

	var loginErr *channel.LoginError
	assert.ErrorAs(t, err, &loginErr)
	assert.Len(t, f.ledger.Checkpoints, 2)
	assert.Equal(t, 2, report.Checkpoints)

	tbl := f.ledger.Table()
	assert.Equal(t, types.StatusEmailSent, tbl.Rows[0].Status(), "sent email is persisted")
	assert.Equal(t, types.StatusContentGenerated, tbl.Rows[1].Status())
}

func TestRun_FinalCheckpointFailure(t *testing.T) {
	f := newFixture(row("Acme", types.FieldEmail, "a@acme.io"))
	f.ledger.FailOverwriteAt = 2
	p := f.pipeline(t, Options{UseEmail: true})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint")
	assert.Len(t, f.email.Sent, 1)
	assert.Equal(t, types.StatusContentGenerated, f.ledger.Table().Rows[0].Status())
}

func TestRun_StatusMonotonicity(t *testing.T) {
	f := newFixture(
		row("Acme", types.FieldEmail, "a@acme.io"),
		row("Globex", types.FieldEmail, "bad@globex.io"),
		row("Initech"),
	)
	f.email.FailFor = map[string]bool{"bad@globex.io": true}
	p := f.pipeline(t, Options{UseEmail: true})

	var history [][]types.Status
	for pass := 0; pass < 3; pass++ {
		_, err := p.Run(context.Background())
		require.NoError(t, err)
		var statuses []types.Status
		for _, l := range f.ledger.Table().Rows {
			statuses = append(statuses, l.Status())
		}
		history = append(history, statuses)
	}

	for pass := 1; pass < len(history); pass++ {
		for i, s := range history[pass-1] {
			if s.IsTerminal() {
				assert.Equal(t, s, history[pass][i], "row %d left terminal state %s", i, s)
			}
		}
	}
	assert.Equal(t, types.StatusEmailFailed, history[2][1])
	assert.Equal(t, types.StatusContactRequired, history[2][2])
}

func TestRun_CancelledBeforeDispatchPersistsNothing(t *testing.T) {
	f := newFixture(row("Acme", types.FieldEmail, "a@acme.io"))
	p := f.pipeline(t, Options{UseEmail: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.Empty(t, f.ledger.Checkpoints)
}
