// Package rendering turns a lead's generated content into the documents archived for it.
package rendering

import "fmt"

// TemplateError reports an applicant template that could not be filled.
type TemplateError struct {
	Template string // which template, e.g. "resume"
	Stage    string // "parse" or "execute"
	Cause    error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s template: %s failed: %v", e.Template, e.Stage, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// MissingContentError reports a lead whose documents cannot be built because content was never generated.
type MissingContentError struct {
	Lead string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("lead %q has no generated content to render", e.Lead)
}
