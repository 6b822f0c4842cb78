package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid() [][]string {
	return [][]string{
		{"Company Name", "Position", "Email", "LinkedIn Contact", "Status", "Notes"},
		{"Acme", "Engineer", "", "", "New Job", "referral"},
		{"Globex", "SRE", "a@b.com"},
		{"", "", "", "", "", ""},
	}
}

func TestTableFromGrid(t *testing.T) {
	table := TableFromGrid(sampleGrid())

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Acme", table.Rows[0].Value(FieldCompanyName))
	assert.Equal(t, "referral", table.Rows[0].Get("Notes"))
	assert.Equal(t, "", table.Rows[1].Get(FieldStatus), "short rows are padded")
	assert.Equal(t, StatusNewJob, table.Rows[1].Status())
	assert.True(t, table.Rows[2].IsBlank())
	assert.Equal(t, 1, table.Rows[1].Row)
}

func TestTableFromGrid_Empty(t *testing.T) {
	table := TableFromGrid(nil)
	assert.Equal(t, DefaultHeader, table.Header)
	assert.Empty(t, table.Rows)
}

func TestTable_GridPreservesExtraColumns(t *testing.T) {
	table := TableFromGrid(sampleGrid())
	grid := table.Grid()

	require.Len(t, grid, 4)
	assert.Equal(t, sampleGrid()[0], grid[0])
	assert.Equal(t, "referral", grid[1][5])
	assert.Len(t, grid[2], 6)
}

func TestTable_GridPreservesUnnamedAndDuplicateColumns(t *testing.T) {
	grid := [][]string{
		{"Company Name", "Position", "", "Status", "Status"},
		{"Acme", "Engineer", "my note", "New Job", "dup-col-value"},
		{"Globex", "SRE"},
	}
	table := TableFromGrid(grid)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, StatusNewJob, table.Rows[0].Status(), "first header wins the name")
	assert.Equal(t, map[int]string{2: "my note", 4: "dup-col-value"}, table.Rows[0].Extra)

	lead, ok := table.Lead(0)
	require.True(t, ok)
	lead.SetStatus(StatusContentGenerated)
	require.NoError(t, table.Merge(lead))

	out := table.Grid()
	assert.Equal(t, grid[0], out[0])
	assert.Equal(t, []string{"Acme", "Engineer", "my note", "Content Generated", "dup-col-value"}, out[1])
	assert.Equal(t, []string{"Globex", "SRE", "", "", ""}, out[2])
}

func TestLead_CloneCopiesExtra(t *testing.T) {
	l := Lead{Row: 0, Fields: map[string]string{}, Extra: map[int]string{3: "x"}}
	c := l.Clone()
	c.Extra[3] = "y"
	assert.Equal(t, "x", l.Extra[3])
}

func TestTable_Merge(t *testing.T) {
	table := TableFromGrid(sampleGrid())

	lead, ok := table.Lead(0)
	require.True(t, ok)
	lead.SetStatus(StatusContactRequired)
	lead.Set(FieldEmailStatus, "")

	// the copy does not alias the table
	assert.Equal(t, StatusNewJob, table.Rows[0].Status())

	require.NoError(t, table.Merge(lead))
	assert.Equal(t, StatusContactRequired, table.Rows[0].Status())
	assert.Contains(t, table.Header, FieldEmailStatus)
	assert.Equal(t, "Notes", table.Header[5], "existing columns keep their position")

	err := table.Merge(Lead{Row: 10})
	assert.Error(t, err)
}

func TestLead_ContactAndContent(t *testing.T) {
	lead := NewLead(0, map[string]string{FieldEmail: "  "})
	assert.False(t, lead.HasContact())

	lead.Set(FieldLinkedInContact, "https://www.linkedin.com/in/jane")
	assert.True(t, lead.HasContact())
	assert.True(t, lead.HasLinkedIn())
	assert.False(t, lead.HasEmail())

	assert.False(t, lead.HasAllContent())
	lead.ApplyContent(&ContentBundle{
		CoverLetter:     "cl",
		ResumeSummary:   "rs",
		MissingKeywords: "go",
		MessageContent:  "hi",
		MessageSubject:  "subj",
		LinkedInNote:    "note",
	})
	assert.True(t, lead.HasAllContent())
	assert.Equal(t, "rs", lead.Get(FieldResume))
}

func TestTable_CountByStatus(t *testing.T) {
	table := TableFromGrid(sampleGrid())
	counts := table.CountByStatus()

	assert.Equal(t, 2, counts[StatusNewJob])
	assert.Len(t, counts, 1)
}

func TestContentBundle_Validate(t *testing.T) {
	b := &ContentBundle{
		CoverLetter:     "cl",
		ResumeSummary:   "rs",
		MissingKeywords: "k",
		MessageContent:  "m",
		MessageSubject:  "s",
	}

	err := b.Validate()
	require.Error(t, err)
	var incomplete *IncompleteBundleError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "linkedin_note", incomplete.Field)

	b.LinkedInNote = "n"
	assert.NoError(t, b.Validate())
}
