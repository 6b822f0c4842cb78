package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/job-outreach/internal/rendering"
	"github.com/jonathan/job-outreach/internal/types"
)

// templateFormats maps accepted template extensions to their markup.
var templateFormats = map[string]rendering.Format{
	".txt": rendering.FormatText,
	".md":  rendering.FormatMarkdown,
	".tex": rendering.FormatLaTeX,
}

// TemplateFormat returns the markup of a template file, chosen by extension.
func TemplateFormat(path string) (rendering.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := templateFormats[ext]
	if !ok {
		return "", fmt.Errorf("unsupported template format %q for %s (use .txt, .md or .tex)", ext, path)
	}
	return format, nil
}

// LoadTemplates reads the applicant material named by the configuration.
// It returns the templates and the markup of the resume template.
func (c *Config) LoadTemplates() (types.Templates, rendering.Format, error) {
	tpl := types.Templates{
		ApplicantName:       c.ApplicantName,
		ProfessionalSummary: c.ProfessionalSummary,
	}

	resumeFormat, err := TemplateFormat(c.ResumeTemplate)
	if err != nil {
		return tpl, "", err
	}

	for _, f := range []struct {
		dst      *string
		path     string
		required bool
	}{
		{&tpl.Resume, c.ResumeTemplate, true},
		{&tpl.CoverLetter, c.CoverLetterTemplate, true},
		{&tpl.EmailTemplate, c.EmailTemplate, false},
		{&tpl.LinkedInNoteTemplate, c.NoteTemplate, false},
	} {
		if f.path == "" {
			if f.required {
				return tpl, "", fmt.Errorf("%w: template path", ErrMissingSetting)
			}
			continue
		}
		if _, err := TemplateFormat(f.path); err != nil {
			return tpl, "", err
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return tpl, "", fmt.Errorf("failed to read template %s: %w", f.path, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" && f.required {
			return tpl, "", fmt.Errorf("template %s is empty", f.path)
		}
		*f.dst = text
	}

	return tpl, resumeFormat, nil
}
