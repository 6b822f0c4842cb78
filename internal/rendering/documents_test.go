package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-outreach/internal/types"
)

func generatedLead() types.Lead {
	return types.NewLead(0, map[string]string{
		types.FieldCompanyName:     "Acme",
		types.FieldPosition:        "Engineer",
		types.FieldCoverLetter:     "Dear Acme",
		types.FieldResume:          "Builds 100% reliable systems",
		types.FieldMissingKeywords: "Kafka",
		types.FieldMessageContent:  "Hi {{.ContactName}}",
		types.FieldMessageSubject:  "Engineer role",
		types.FieldLinkedInNote:    "Let's connect",
	})
}

func TestRenderDocuments(t *testing.T) {
	tpl := types.Templates{ApplicantName: "Sam", Resume: "Summary: {{.Summary}}\nFor {{.CompanyName}}"}

	files, err := RenderDocuments(generatedLead(), tpl, FormatText)
	require.NoError(t, err)

	assert.Len(t, files, 4)
	assert.Equal(t, "Summary: Builds 100% reliable systems\nFor Acme", string(files["resume.txt"]))
	assert.Equal(t, "Dear Acme\n", string(files[FileCoverLetter]))
	assert.Equal(t, "Subject: Engineer role\n\nHi {{.ContactName}}\n", string(files[FileEmail]))
	assert.Equal(t, "Let's connect\n", string(files[FileLinkedInNote]))
}

func TestRenderDocuments_NoContent(t *testing.T) {
	l := types.NewLead(0, map[string]string{types.FieldCompanyName: "Acme"})
	_, err := RenderDocuments(l, types.Templates{}, FormatText)

	var missingErr *MissingContentError
	require.ErrorAs(t, err, &missingErr)
	assert.Contains(t, err.Error(), "Acme")
}

func TestRenderResume(t *testing.T) {
	data := ResumeData{Summary: "Ships 100% of_things", MissingKeywords: "C#"}

	t.Run("prepends without placeholder", func(t *testing.T) {
		got, err := RenderResume("EXPERIENCE", data, FormatText)
		require.NoError(t, err)
		assert.Equal(t, "Ships 100% of_things\n\nEXPERIENCE", got)
	})

	t.Run("empty template", func(t *testing.T) {
		got, err := RenderResume("", data, FormatMarkdown)
		require.NoError(t, err)
		assert.Equal(t, "Ships 100% of_things\n", got)
	})

	t.Run("latex escapes", func(t *testing.T) {
		got, err := RenderResume(`\section{Summary} {{.Summary}} -- {{.MissingKeywords}}`, data, FormatLaTeX)
		require.NoError(t, err)
		assert.Equal(t, `\section{Summary} Ships 100\% of\_things -- C\#`, got)
	})

	t.Run("bad template", func(t *testing.T) {
		_, err := RenderResume("{{.Summary}} {{.Nope", data, FormatText)
		var tmplErr *TemplateError
		assert.ErrorAs(t, err, &tmplErr)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := RenderResume("{{.Summary}} {{.Phone}}", data, FormatText)
		var tmplErr *TemplateError
		assert.ErrorAs(t, err, &tmplErr)
	})
}

func TestResumeFile(t *testing.T) {
	assert.Equal(t, "resume.txt", ResumeFile(FormatText))
	assert.Equal(t, "resume.md", ResumeFile(FormatMarkdown))
	assert.Equal(t, "resume.tex", ResumeFile(FormatLaTeX))
	assert.Equal(t, "resume.txt", ResumeFile(""))
}
