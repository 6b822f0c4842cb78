package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-outreach/internal/types"
)

// shortener replays scripted ShortenNote answers.
type shortener struct {
	answers []string
	err     error
	calls   int
}

func (s *shortener) Generate(context.Context, types.GenerateRequest) (*types.ContentBundle, error) {
	return nil, errors.New("not used")
}

func (s *shortener) ShortenNote(context.Context, string, int) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.calls > len(s.answers) {
		return s.answers[len(s.answers)-1], nil
	}
	return s.answers[s.calls-1], nil
}

func (s *shortener) ExtractEmail(context.Context, string) (string, error) {
	return "", ErrNoEmailFound
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		note  string
		limit int
		want  string
	}{
		{"fits", "short note", 20, "short note"},
		{"word boundary", "hello there friend", 14, "hello there"},
		{"no boundary", "abcdefghij", 4, "abcd"},
		{"multibyte", "héllo wörld", 7, "héllo"},
		{"zero limit", "anything", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.note, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, NoteLength(got), max(tt.limit, 0))
		})
	}
}

func TestFitNote(t *testing.T) {
	long := strings.Repeat("word ", 100)

	t.Run("already fits", func(t *testing.T) {
		s := &shortener{}
		res, err := FitNote(context.Background(), s, "Hi there", 300, 3)
		require.NoError(t, err)
		assert.Equal(t, "Hi there", res.Note)
		assert.Zero(t, res.Attempts)
		assert.Zero(t, s.calls)
	})

	t.Run("shortened on second attempt", func(t *testing.T) {
		s := &shortener{answers: []string{long, "Hi, let's connect"}}
		res, err := FitNote(context.Background(), s, long, 100, 3)
		require.NoError(t, err)
		assert.Equal(t, "Hi, let's connect", res.Note)
		assert.Equal(t, 2, res.Attempts)
		assert.False(t, res.Truncated)
	})

	t.Run("bounded then truncated", func(t *testing.T) {
		s := &shortener{answers: []string{long}}
		res, err := FitNote(context.Background(), s, long, 100, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, s.calls)
		assert.True(t, res.Truncated)
		assert.LessOrEqual(t, NoteLength(res.Note), 100)
	})

	t.Run("shorten error falls back to truncation", func(t *testing.T) {
		s := &shortener{err: errors.New("api down")}
		res, err := FitNote(context.Background(), s, long, 50, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, s.calls)
		assert.True(t, res.Truncated)
		assert.LessOrEqual(t, NoteLength(res.Note), 50)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := FitNote(ctx, &shortener{answers: []string{"x"}}, long, 50, 3)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
