// Package contacts finds contact emails and names in free text and posting pages.
package contacts

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/job-outreach/internal/fetch"
)

var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

// FindEmail returns the first email address in text, or "" when there is none.
func FindEmail(text string) string {
	match := emailPattern.FindString(text)
	return strings.TrimRight(match, ".")
}

// FindEmails returns every distinct email address in text, in order of appearance.
func FindEmails(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range emailPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".")
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// NameFromEmail derives a display name from the local part of an address,
// e.g. "jane.doe@acme.io" becomes "Jane Doe". Returns "" unless the local part
// splits into at least two alphabetic words.
func NameFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return ""
	}
	parts := strings.FieldsFunc(email[:at], func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(parts) < 2 {
		return ""
	}

	words := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsLetter(r) {
				return ""
			}
		}
		words = append(words, capitalize(p))
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// PageFetcher retrieves a posting page.
type PageFetcher func(ctx context.Context, url string) (*fetch.Page, error)

// Scraper looks for a contact email on a job posting page.
type Scraper struct {
	fetchPage PageFetcher
}

// NewScraper creates a scraper backed by fetch.PostingPage.
func NewScraper(opts *fetch.Options) *Scraper {
	return &Scraper{
		fetchPage: func(ctx context.Context, url string) (*fetch.Page, error) {
			return fetch.PostingPage(ctx, url, opts)
		},
	}
}

// NewScraperWithFetcher creates a scraper using a custom page fetcher.
func NewScraperWithFetcher(f PageFetcher) *Scraper {
	return &Scraper{fetchPage: f}
}

// FindEmail fetches the posting and returns the first address found, preferring mailto links.
func (s *Scraper) FindEmail(ctx context.Context, url string) (string, error) {
	page, err := s.fetchPage(ctx, url)
	if err != nil {
		return "", err
	}
	if len(page.Mailtos) > 0 {
		return page.Mailtos[0], nil
	}
	return FindEmail(page.Text), nil
}
