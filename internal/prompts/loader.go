// Package prompts holds the model prompts used for outreach content.
// Prompts live in an embedded JSON file and use {{.Key}} placeholders.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"sync"
)

// Prompt keys.
const (
	KeyGenerateContent = "generate-content"
	KeyShortenNote     = "shorten-note"
	KeyExtractEmail    = "extract-email"
)

// ContactName is the placeholder generated content uses for the recipient's name.
// It is filled at dispatch time, once the name is known.
const ContactName = "ContactName"

//go:embed outreach.json
var outreachJSON []byte

var loadOutreach = sync.OnceValues(func() (map[string]string, error) {
	var prompts map[string]string
	if err := json.Unmarshal(outreachJSON, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse outreach prompts: %w", err)
	}
	return prompts, nil
})

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// Get retrieves a prompt by key.
func Get(key string) (string, error) {
	prompts, err := loadOutreach()
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return prompt, nil
}

// MustGet retrieves a prompt by key, panicking if it is missing.
func MustGet(key string) string {
	prompt, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Keys returns the available prompt keys, sorted.
func Keys() []string {
	prompts, err := loadOutreach()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Placeholder returns the template placeholder for key, e.g. "{{.ContactName}}".
func Placeholder(key string) string {
	return "{{." + key + "}}"
}

// Format replaces {{.Key}} placeholders with values from data.
// Placeholders without a value are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if v, ok := data[match[3:len(match)-2]]; ok {
			return v
		}
		return match
	})
}

// Placeholders returns the distinct placeholder names in text, in order of first use.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Unresolved reports the placeholders of text that are not listed in allowed.
// Names match exactly, as Format substitutes them.
func Unresolved(text string, allowed ...string) []string {
	var out []string
	for _, name := range Placeholders(text) {
		if !slices.Contains(allowed, name) {
			out = append(out, name)
		}
	}
	return out
}
