package rendering

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jonathan/job-outreach/internal/types"
)

// Format is the markup of the applicant's resume template.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatLaTeX    Format = "tex"
)

// Archived file names.
const (
	FileCoverLetter  = "cover_letter.txt"
	FileEmail        = "email.txt"
	FileLinkedInNote = "linkedin_note.txt"
)

// ResumeFile returns the archived resume name for a template format.
func ResumeFile(f Format) string {
	switch f {
	case FormatMarkdown, FormatLaTeX:
		return "resume." + string(f)
	default:
		return "resume.txt"
	}
}

// ResumeData is passed to resume templates that carry placeholders.
type ResumeData struct {
	ApplicantName   string
	CompanyName     string
	Position        string
	Summary         string
	MissingKeywords string
}

// RenderDocuments builds the archive files for a lead whose content has been generated.
func RenderDocuments(l types.Lead, tpl types.Templates, format Format) (map[string][]byte, error) {
	if !l.HasAllContent() {
		return nil, &MissingContentError{Lead: l.Label()}
	}

	resume, err := RenderResume(tpl.Resume, ResumeData{
		ApplicantName:   tpl.ApplicantName,
		CompanyName:     l.Value(types.FieldCompanyName),
		Position:        l.Value(types.FieldPosition),
		Summary:         l.Value(types.FieldResume),
		MissingKeywords: l.Value(types.FieldMissingKeywords),
	}, format)
	if err != nil {
		return nil, err
	}

	return map[string][]byte{
		ResumeFile(format): []byte(resume),
		FileCoverLetter:    []byte(l.Value(types.FieldCoverLetter) + "\n"),
		FileEmail:          []byte(EmailText(l.Value(types.FieldMessageSubject), l.Value(types.FieldMessageContent))),
		FileLinkedInNote:   []byte(l.Value(types.FieldLinkedInNote) + "\n"),
	}, nil
}

// RenderResume fills the tailored summary into the resume template.
// Templates referencing {{.Summary}} are executed with text/template; any other
// template gets the summary prepended as its first paragraph.
func RenderResume(resumeTemplate string, data ResumeData, format Format) (string, error) {
	if format == FormatLaTeX {
		data.Summary = EscapeLaTeX(data.Summary)
		data.MissingKeywords = EscapeLaTeX(data.MissingKeywords)
	}

	if !strings.Contains(resumeTemplate, "{{.Summary}}") {
		if strings.TrimSpace(resumeTemplate) == "" {
			return data.Summary + "\n", nil
		}
		return data.Summary + "\n\n" + resumeTemplate, nil
	}

	tmpl, err := template.New("resume").Option("missingkey=error").Parse(resumeTemplate)
	if err != nil {
		return "", &TemplateError{Template: "resume", Stage: "parse", Cause: err}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{Template: "resume", Stage: "execute", Cause: err}
	}
	return sb.String(), nil
}

// EmailText combines a subject and body into one plain-text document.
func EmailText(subject, body string) string {
	return fmt.Sprintf("Subject: %s\n\n%s\n", subject, body)
}
