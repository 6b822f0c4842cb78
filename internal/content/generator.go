package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/job-outreach/internal/contacts"
	"github.com/jonathan/job-outreach/internal/llm"
	"github.com/jonathan/job-outreach/internal/prompts"
	"github.com/jonathan/job-outreach/internal/schemas"
	"github.com/jonathan/job-outreach/internal/types"
)

// DefaultNoteLimit is the character budget of a connection request note.
const DefaultNoteLimit = 300

// Generator produces outreach content for one lead.
type Generator interface {
	// Generate returns a complete bundle or an error; a partial bundle is never returned.
	Generate(ctx context.Context, req types.GenerateRequest) (*types.ContentBundle, error)
	// ShortenNote asks for a rewrite of note within limit characters.
	ShortenNote(ctx context.Context, note string, limit int) (string, error)
	// ExtractEmail finds a contact address in free text.
	ExtractEmail(ctx context.Context, text string) (string, error)
}

// LLMGenerator implements Generator on top of an llm.Client.
type LLMGenerator struct {
	client    llm.Client
	noteLimit int
}

// NewLLMGenerator creates a generator. noteLimit <= 0 uses DefaultNoteLimit.
func NewLLMGenerator(client llm.Client, noteLimit int) *LLMGenerator {
	if noteLimit <= 0 {
		noteLimit = DefaultNoteLimit
	}
	return &LLMGenerator{client: client, noteLimit: noteLimit}
}

// Generate tailors the bundle for a job description from the applicant's templates.
func (g *LLMGenerator) Generate(ctx context.Context, req types.GenerateRequest) (*types.ContentBundle, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, &ParseError{Message: "job description is empty"}
	}

	prompt := buildGeneratePrompt(req, g.noteLimit)

	// TierAdvanced: the bundle has to follow the cover letter structure closely
	responseText, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate content bundle",
			Cause:   err,
		}
	}

	return parseBundle(responseText)
}

// ShortenNote rewrites a note to fit within limit characters.
func (g *LLMGenerator) ShortenNote(ctx context.Context, note string, limit int) (string, error) {
	template := prompts.MustGet(prompts.KeyShortenNote)
	prompt := prompts.Format(template, map[string]string{
		"Limit": strconv.Itoa(limit),
		"Note":  note,
	})

	responseText, err := g.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &APICallError{Message: "failed to shorten note", Cause: err}
	}
	shortened := llm.CleanText(responseText)
	if shortened == "" {
		return "", &ParseError{Message: "empty note returned"}
	}
	return shortened, nil
}

// ExtractEmail asks the model for the contact address in text.
// The answer is checked against the email pattern so a hallucinated value is never returned.
func (g *LLMGenerator) ExtractEmail(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoEmailFound
	}

	template := prompts.MustGet(prompts.KeyExtractEmail)
	prompt := prompts.Format(template, map[string]string{"Text": text})

	responseText, err := g.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &APICallError{Message: "failed to extract email", Cause: err}
	}

	answer := llm.CleanText(responseText)
	if strings.EqualFold(answer, "NONE") {
		return "", ErrNoEmailFound
	}
	email := contacts.FindEmail(answer)
	if email == "" {
		return "", ErrNoEmailFound
	}
	return email, nil
}

func buildGeneratePrompt(req types.GenerateRequest, noteLimit int) string {
	template := prompts.MustGet(prompts.KeyGenerateContent)
	tpl := req.Templates
	return prompts.Format(template, map[string]string{
		"ApplicantName":        tpl.ApplicantName,
		"Position":             req.Position,
		"CompanyName":          req.CompanyName,
		"NoteLimit":            strconv.Itoa(noteLimit),
		"ProfessionalSummary":  tpl.ProfessionalSummary,
		"Resume":               tpl.Resume,
		"CoverLetter":          tpl.CoverLetter,
		"EmailTemplate":        tpl.EmailTemplate,
		"LinkedInNoteTemplate": tpl.LinkedInNoteTemplate,
		"Link":                 req.Link,
		"Description":          req.Description,
	})
}

// parseBundle validates the response against the bundle schema and decodes it.
func parseBundle(responseText string) (*types.ContentBundle, error) {
	responseText = llm.CleanJSONBlock(responseText)

	if err := schemas.ValidateContentBundle([]byte(responseText)); err != nil {
		return nil, &ParseError{Message: "response does not match content bundle schema", Cause: err}
	}

	var bundle types.ContentBundle
	if err := json.Unmarshal([]byte(responseText), &bundle); err != nil {
		return nil, &ParseError{Message: "failed to decode content bundle", Cause: err}
	}

	trimBundle(&bundle)
	if err := bundle.Validate(); err != nil {
		return nil, &ParseError{Message: "incomplete content bundle", Cause: err}
	}

	// only the contact name may be left for dispatch to fill
	for _, f := range []struct{ name, text string }{
		{"message_content", bundle.MessageContent},
		{"message_subject", bundle.MessageSubject},
		{"linkedin_note", bundle.LinkedInNote},
	} {
		if stray := prompts.Unresolved(f.text, prompts.ContactName); len(stray) > 0 {
			return nil, &ParseError{Message: fmt.Sprintf("%s has unfilled placeholders %v", f.name, stray)}
		}
	}
	return &bundle, nil
}

func trimBundle(b *types.ContentBundle) {
	b.CoverLetter = strings.TrimSpace(b.CoverLetter)
	b.ResumeSummary = strings.TrimSpace(b.ResumeSummary)
	b.MissingKeywords = strings.TrimSpace(b.MissingKeywords)
	b.MessageContent = strings.TrimSpace(b.MessageContent)
	b.MessageSubject = strings.TrimSpace(b.MessageSubject)
	b.LinkedInNote = strings.TrimSpace(b.LinkedInNote)
}
