package types

import "fmt"

// ContentBundle is the structured output of content generation for one lead.
type ContentBundle struct {
	CoverLetter     string `json:"cover_letter"`
	ResumeSummary   string `json:"resume_summary"`
	MissingKeywords string `json:"missing_keywords"`
	MessageContent  string `json:"message_content"`
	MessageSubject  string `json:"message_subject"`
	LinkedInNote    string `json:"linkedin_note"`
}

// IncompleteBundleError reports a bundle field that came back empty.
type IncompleteBundleError struct {
	Field string
}

func (e *IncompleteBundleError) Error() string {
	return fmt.Sprintf("content bundle is missing %s", e.Field)
}

// Validate checks that every field of the bundle is populated.
func (b *ContentBundle) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"cover_letter", b.CoverLetter},
		{"resume_summary", b.ResumeSummary},
		{"missing_keywords", b.MissingKeywords},
		{"message_content", b.MessageContent},
		{"message_subject", b.MessageSubject},
		{"linkedin_note", b.LinkedInNote},
	}
	for _, f := range fields {
		if f.value == "" {
			return &IncompleteBundleError{Field: f.name}
		}
	}
	return nil
}

// Templates holds the applicant material every generation request is tailored from.
type Templates struct {
	ApplicantName        string
	ProfessionalSummary  string
	Resume               string
	CoverLetter          string
	EmailTemplate        string
	LinkedInNoteTemplate string
}

// GenerateRequest is the input of one content generation call.
type GenerateRequest struct {
	Description string
	Position    string
	CompanyName string
	Link        string
	Templates   Templates
}

// RequestFromLead builds a generation request from a lead row.
func RequestFromLead(l Lead, tpl Templates) GenerateRequest {
	return GenerateRequest{
		Description: l.Value(FieldDescription),
		Position:    l.Value(FieldPosition),
		CompanyName: l.Value(FieldCompanyName),
		Link:        l.Value(FieldLink),
		Templates:   tpl,
	}
}
