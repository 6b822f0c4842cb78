package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-outreach/internal/testutil"
	"github.com/jonathan/job-outreach/internal/types"
)

// grid builds a ledger grid with the default header plus a Notes column.
func grid(rows ...map[string]string) [][]string {
	header := append(append([]string(nil), types.DefaultHeader...), "Notes")
	g := [][]string{header}
	for _, r := range rows {
		cells := make([]string, len(header))
		for i, h := range header {
			cells[i] = r[h]
		}
		g = append(g, cells)
	}
	return g
}

func row(company string, fields ...string) map[string]string {
	r := map[string]string{
		types.FieldCompanyName: company,
		types.FieldPosition:    "Engineer",
		types.FieldLink:        "https://jobs.example.com/" + company,
		types.FieldDescription: company + " is hiring an engineer",
	}
	for i := 0; i+1 < len(fields); i += 2 {
		r[fields[i]] = fields[i+1]
	}
	return r
}

// withContent adds generated content and the Content Generated status.
func withContent(r map[string]string) map[string]string {
	b := testutil.Bundle(r[types.FieldCompanyName])
	r[types.FieldCoverLetter] = b.CoverLetter
	r[types.FieldResume] = b.ResumeSummary
	r[types.FieldMissingKeywords] = b.MissingKeywords
	r[types.FieldMessageContent] = b.MessageContent
	r[types.FieldMessageSubject] = b.MessageSubject
	r[types.FieldLinkedInNote] = b.LinkedInNote
	r[types.FieldStatus] = string(types.StatusContentGenerated)
	return r
}

type fixture struct {
	ledger    *testutil.Ledger
	generator *testutil.Generator
	archiver  *testutil.Archiver
	email     *testutil.Email
	network   *testutil.Network
	scraper   *testutil.Scraper
	sleeps    []time.Duration
}

func newFixture(rows ...map[string]string) *fixture {
	return &fixture{
		ledger:    testutil.NewLedger(grid(rows...)),
		generator: &testutil.Generator{},
		archiver:  &testutil.Archiver{},
		email:     &testutil.Email{},
		network:   &testutil.Network{},
		scraper:   &testutil.Scraper{},
	}
}

func (f *fixture) pipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	if opts.UseLinkedIn && opts.LinkedInUsername == "" {
		opts.LinkedInUsername = "me@example.com"
		opts.LinkedInPassword = "secret"
	}
	p, err := New(Dependencies{
		Ledger:    f.ledger,
		Generator: f.generator,
		Archiver:  f.archiver,
		Email:     f.email,
		Network:   f.network,
		Scraper:   f.scraper,
	}, opts)
	require.NoError(t, err)
	p.sleep = func(_ context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	return p
}

func (f *fixture) table(t *testing.T) *types.Table {
	t.Helper()
	tbl, err := f.ledger.Load(context.Background())
	require.NoError(t, err)
	return tbl
}
