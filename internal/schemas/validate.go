// Package schemas checks model responses against the JSON schema of the content bundle.
package schemas

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed content_bundle.schema.json
var contentBundleSchema string

var (
	bundleSchema     *gojsonschema.Schema
	bundleSchemaErr  error
	bundleSchemaOnce sync.Once
)

// compiledBundleSchema compiles the embedded schema on first use.
func compiledBundleSchema() (*gojsonschema.Schema, error) {
	bundleSchemaOnce.Do(func() {
		bundleSchema, bundleSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(contentBundleSchema))
	})
	return bundleSchema, bundleSchemaErr
}

// FieldError is one schema violation in a bundle.
type FieldError struct {
	Field   string
	Message string
}

// BundleError lists every way a response failed the content bundle schema.
type BundleError struct {
	Errors []FieldError
}

func (e *BundleError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "content bundle invalid: " + strings.Join(parts, "; ")
}

// Fields returns the sorted, distinct names of the offending fields.
func (e *BundleError) Fields() []string {
	seen := make(map[string]bool, len(e.Errors))
	var fields []string
	for _, fe := range e.Errors {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			fields = append(fields, fe.Field)
		}
	}
	sort.Strings(fields)
	return fields
}

// DocumentError means the response could not be read as JSON, or the schema itself failed to compile.
type DocumentError struct {
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("content bundle is not a readable JSON document: %v", e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// ValidateContentBundle checks a raw model response against the content bundle schema.
// Missing keys are reported under the key's own name rather than the document root.
func ValidateContentBundle(doc []byte) error {
	schema, err := compiledBundleSchema()
	if err != nil {
		return &DocumentError{Cause: err}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &DocumentError{Cause: err}
	}
	if result.Valid() {
		return nil
	}

	bundleErr := &BundleError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		bundleErr.Errors = append(bundleErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return bundleErr
}
