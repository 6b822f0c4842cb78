package content

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxShortenAttempts bounds the shortening requests made for one note.
const DefaultMaxShortenAttempts = 3

// NoteLength returns the length of a note in characters.
func NoteLength(note string) int {
	return utf8.RuneCountInString(note)
}

// Truncate cuts note to at most limit characters, preferring the last word boundary
// in the second half of the budget.
func Truncate(note string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(note)
	if len(runes) <= limit {
		return note
	}

	cut := runes[:limit]
	for i := len(cut) - 1; i >= limit/2; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

// FitResult describes how a note was brought under the budget.
type FitResult struct {
	Note      string
	Attempts  int
	Truncated bool
}

// FitNote asks gen to shorten note until it fits limit, at most maxAttempts times,
// then hard-truncates whatever still overflows. Shortening errors end the loop early.
// The returned note always fits. A cancelled context is returned as an error.
func FitNote(ctx context.Context, gen Generator, note string, limit, maxAttempts int) (FitResult, error) {
	if limit <= 0 {
		limit = DefaultNoteLimit
	}
	if maxAttempts < 0 {
		maxAttempts = 0
	}

	res := FitResult{Note: note}
	for res.Attempts < maxAttempts && NoteLength(res.Note) > limit {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempts++
		shortened, err := gen.ShortenNote(ctx, res.Note, limit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			break
		}
		res.Note = shortened
	}

	if NoteLength(res.Note) > limit {
		res.Note = Truncate(res.Note, limit)
		res.Truncated = true
	}
	return res, nil
}
