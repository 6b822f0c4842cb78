// Package testutil provides in-memory fakes of the pipeline's external collaborators.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/job-outreach/internal/channel"
	"github.com/jonathan/job-outreach/internal/content"
	"github.com/jonathan/job-outreach/internal/ledger"
	"github.com/jonathan/job-outreach/internal/types"
)

// Ledger wraps ledger.Memory with error injection and a record of every checkpoint.
type Ledger struct {
	*ledger.Memory
	mu           sync.Mutex
	LoadErr      error
	OverwriteErr error
	// FailOverwriteAt fails the n-th overwrite (1-based); zero disables it.
	FailOverwriteAt int
	Checkpoints     []*types.Table
}

// NewLedger creates a fake ledger from a grid whose first row is the header.
func NewLedger(grid [][]string) *Ledger {
	return &Ledger{Memory: ledger.NewMemory(types.TableFromGrid(grid))}
}

func (l *Ledger) Load(ctx context.Context) (*types.Table, error) {
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	return l.Memory.Load(ctx)
}

func (l *Ledger) Overwrite(ctx context.Context, t *types.Table) error {
	l.mu.Lock()
	n := len(l.Checkpoints) + 1
	l.mu.Unlock()

	if l.OverwriteErr != nil || (l.FailOverwriteAt > 0 && n == l.FailOverwriteAt) {
		err := l.OverwriteErr
		if err == nil {
			err = fmt.Errorf("overwrite %d rejected", n)
		}
		l.mu.Lock()
		l.Checkpoints = append(l.Checkpoints, nil)
		l.mu.Unlock()
		return err
	}
	if err := l.Memory.Overwrite(ctx, t); err != nil {
		return err
	}
	l.mu.Lock()
	l.Checkpoints = append(l.Checkpoints, t.Clone())
	l.mu.Unlock()
	return nil
}

// Table returns the stored table.
func (l *Ledger) Table() *types.Table {
	t, _ := l.Memory.Load(context.Background())
	return t
}

// Bundle returns a complete content bundle for a company.
func Bundle(company string) *types.ContentBundle {
	return &types.ContentBundle{
		CoverLetter:     "Dear " + company + " team",
		ResumeSummary:   "Engineer tailored for " + company,
		MissingKeywords: "Kafka, Terraform",
		MessageContent:  "Hi {{.ContactName}}, I applied at " + company + ".",
		MessageSubject:  "Application to " + company,
		LinkedInNote:    "Hi {{.ContactName}}, I'd love to connect about " + company + ".",
	}
}

// Generator is a scripted content.Generator.
type Generator struct {
	mu sync.Mutex
	// FailFor lists company names whose generation fails.
	FailFor map[string]bool
	// Note overrides the linkedin note of every bundle.
	Note string
	// Shorten answers ShortenNote; nil echoes the note.
	Shorten func(note string, limit int) (string, error)
	// Emails maps input text to ExtractEmail answers.
	Emails     map[string]string
	ExtractErr error

	Requests     []types.GenerateRequest
	ShortenCalls int
	ExtractCalls int
}

func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (*types.ContentBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.FailFor[req.CompanyName] {
		return nil, &content.APICallError{Message: "scripted failure for " + req.CompanyName}
	}
	b := Bundle(req.CompanyName)
	if g.Note != "" {
		b.LinkedInNote = g.Note
	}
	return b, nil
}

func (g *Generator) ShortenNote(_ context.Context, note string, limit int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ShortenCalls++
	if g.Shorten == nil {
		return note, nil
	}
	return g.Shorten(note, limit)
}

func (g *Generator) ExtractEmail(_ context.Context, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ExtractCalls++
	if g.ExtractErr != nil {
		return "", g.ExtractErr
	}
	if email, ok := g.Emails[text]; ok {
		return email, nil
	}
	return "", content.ErrNoEmailFound
}

// Archiver records uploads.
type Archiver struct {
	mu      sync.Mutex
	Err     error
	Uploads map[string]map[string][]byte
}

func (a *Archiver) Upload(_ context.Context, folderKey string, files map[string][]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	if a.Uploads == nil {
		a.Uploads = make(map[string]map[string][]byte)
	}
	a.Uploads[folderKey] = files
	return nil
}

// SentEmail is one delivered email.
type SentEmail struct {
	Recipient string
	Subject   string
	Body      string
}

// Email is a fake email dialer and session.
type Email struct {
	mu      sync.Mutex
	DialErr error
	// FailFor lists recipients whose delivery fails.
	FailFor map[string]bool
	Sent    []SentEmail
	Dials   int
	Closes  int
}

func (e *Email) Dial(context.Context) (channel.EmailSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Dials++
	if e.DialErr != nil {
		return nil, e.DialErr
	}
	return &emailSession{parent: e}, nil
}

type emailSession struct {
	parent *Email
}

func (s *emailSession) Send(_ context.Context, recipient, subject, body string) error {
	e := s.parent
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailFor[recipient] {
		return &channel.SendError{Channel: channel.Email, Recipient: recipient, Cause: errors.New("mailbox unavailable")}
	}
	e.Sent = append(e.Sent, SentEmail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func (s *emailSession) Close() error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.Closes++
	return nil
}

// SentRequest is one delivered connection request.
type SentRequest struct {
	ProfileURL string
	Note       string
}

// Network is a fake network dialer and session.
type Network struct {
	mu       sync.Mutex
	LoginErr error
	FailFor  map[string]bool
	// Names maps profile URLs to display names; missing entries fail ProfileName.
	Names     map[string]string
	Sent      []SentRequest
	Logins    int
	Closes    int
	NameCalls int
	Username  string
}

func (n *Network) Login(_ context.Context, username, _ string) (channel.NetworkSession, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Logins++
	n.Username = username
	if n.LoginErr != nil {
		return nil, n.LoginErr
	}
	return &networkSession{parent: n}, nil
}

type networkSession struct {
	parent *Network
}

func (s *networkSession) SendConnectionRequest(_ context.Context, profileURL, note string) error {
	n := s.parent
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailFor[profileURL] {
		return &channel.SendError{Channel: channel.LinkedIn, Recipient: profileURL, Step: "connect", Cause: errors.New("button missing")}
	}
	n.Sent = append(n.Sent, SentRequest{ProfileURL: profileURL, Note: note})
	return nil
}

func (s *networkSession) ProfileName(_ context.Context, profileURL string) (string, error) {
	n := s.parent
	n.mu.Lock()
	defer n.mu.Unlock()
	n.NameCalls++
	if name, ok := n.Names[profileURL]; ok {
		return name, nil
	}
	return "", fmt.Errorf("no name on %s", profileURL)
}

func (s *networkSession) Close() error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.Closes++
	return nil
}

// Scraper is a fake posting scraper keyed by URL.
type Scraper struct {
	Emails map[string]string
	Err    error
	Calls  int
}

func (s *Scraper) FindEmail(_ context.Context, url string) (string, error) {
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	return s.Emails[url], nil
}
