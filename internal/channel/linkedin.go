package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/job-outreach/internal/fetch"
)

// DefaultLinkedInURL is the site root used for login.
const DefaultLinkedInURL = "https://www.linkedin.com"

// LinkedInConfig configures the browser used for connection requests.
type LinkedInConfig struct {
	BaseURL     string
	Interactive bool          // show the browser and wait for a human to clear login challenges
	ExecPath    string        // Chrome binary; empty uses the default lookup
	StepTimeout time.Duration // per page interaction
	// ChallengeTimeout is how long an interactive login waits for a checkpoint to be solved.
	ChallengeTimeout time.Duration
}

// LinkedInBrowser opens logged-in browser sessions.
type LinkedInBrowser struct {
	cfg LinkedInConfig
}

// NewLinkedInBrowser creates a network dialer driven by headless Chrome.
func NewLinkedInBrowser(cfg LinkedInConfig) *LinkedInBrowser {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultLinkedInURL
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 30 * time.Second
	}
	if cfg.ChallengeTimeout <= 0 {
		cfg.ChallengeTimeout = 2 * time.Minute
	}
	return &LinkedInBrowser{cfg: cfg}
}

// Login starts a browser and signs in. The browser lives until the session is closed.
func (b *LinkedInBrowser) Login(ctx context.Context, username, password string) (NetworkSession, error) {
	if username == "" || password == "" {
		return nil, &LoginError{Channel: LinkedIn, Message: "username and password are required"}
	}

	opts := fetch.HeadlessAllocatorOptions(!b.cfg.Interactive)
	opts = append(opts, chromedp.Flag("incognito", true))
	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	s := &linkedInSession{
		cfg:     b.cfg,
		browser: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}

	if err := s.login(ctx, username, password); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

type linkedInSession struct {
	cfg     LinkedInConfig
	browser context.Context
	cancel  context.CancelFunc
	current string
}

// step derives a context for one interaction that ends with ctx, the step timeout or the browser.
func (s *linkedInSession) step(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	stepCtx, cancel := context.WithTimeout(s.browser, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return stepCtx, func() {
		stop()
		cancel()
	}
}

func (s *linkedInSession) login(ctx context.Context, username, password string) error {
	stepCtx, cancel := s.step(ctx, s.cfg.StepTimeout)
	defer cancel()

	var location string
	err := chromedp.Run(stepCtx,
		chromedp.Navigate(s.cfg.BaseURL+"/login"),
		chromedp.WaitVisible("#username", chromedp.ByID),
		chromedp.SendKeys("#username", username, chromedp.ByID),
		chromedp.SendKeys("#password", password, chromedp.ByID),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&location),
	)
	if err != nil {
		return &LoginError{Channel: LinkedIn, Message: "login form interaction failed", Cause: err}
	}

	if loginBlocked(location) && s.cfg.Interactive {
		location, err = s.awaitChallenge(ctx)
		if err != nil {
			return &LoginError{Channel: LinkedIn, Message: "login challenge not completed", Cause: err}
		}
	}
	if loginBlocked(location) {
		return &LoginError{Channel: LinkedIn, Message: fmt.Sprintf("still on %s after submitting credentials", location)}
	}
	s.current = location
	return nil
}

// awaitChallenge polls the location until the user has solved a checkpoint in the visible browser.
func (s *linkedInSession) awaitChallenge(ctx context.Context) (string, error) {
	stepCtx, cancel := s.step(ctx, s.cfg.ChallengeTimeout)
	defer cancel()

	var location string
	for {
		if err := chromedp.Run(stepCtx, chromedp.Location(&location)); err != nil {
			return location, err
		}
		if !loginBlocked(location) {
			return location, nil
		}
		select {
		case <-stepCtx.Done():
			return location, stepCtx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func loginBlocked(location string) bool {
	return strings.Contains(location, "/login") || strings.Contains(location, "checkpoint") ||
		strings.Contains(location, "/uas/")
}

func (s *linkedInSession) open(ctx context.Context, profileURL string) error {
	if s.current == profileURL {
		return nil
	}
	stepCtx, cancel := s.step(ctx, s.cfg.StepTimeout)
	defer cancel()

	if err := chromedp.Run(stepCtx,
		chromedp.Navigate(profileURL),
		chromedp.WaitReady("main", chromedp.ByQuery),
	); err != nil {
		s.current = ""
		return err
	}
	s.current = profileURL
	return nil
}

// SendConnectionRequest clicks Connect (directly or under More), adds the note and sends.
func (s *linkedInSession) SendConnectionRequest(ctx context.Context, profileURL, note string) error {
	fail := func(step string, err error) error {
		return &SendError{Channel: LinkedIn, Recipient: profileURL, Step: step, Cause: err}
	}

	if err := s.open(ctx, profileURL); err != nil {
		return fail("open profile", err)
	}

	stepCtx, cancel := s.step(ctx, s.cfg.StepTimeout)
	defer cancel()

	clicked, err := s.click(stepCtx, "Connect")
	if err != nil {
		return fail("connect", err)
	}
	if !clicked {
		if ok, err := s.click(stepCtx, "More"); err != nil || !ok {
			return fail("more actions", orMissing(err, "More"))
		}
		if ok, err := s.click(stepCtx, "Connect"); err != nil || !ok {
			return fail("connect", orMissing(err, "Connect"))
		}
	}

	if ok, err := s.click(stepCtx, "Add a note"); err != nil || !ok {
		return fail("add a note", orMissing(err, "Add a note"))
	}

	if err := chromedp.Run(stepCtx,
		chromedp.WaitVisible("#custom-message", chromedp.ByID),
		chromedp.SendKeys("#custom-message", note, chromedp.ByID),
	); err != nil {
		return fail("note", err)
	}

	if ok, err := s.click(stepCtx, "Send"); err != nil || !ok {
		return fail("send", orMissing(err, "Send"))
	}

	// the profile page changes after an invitation, force a reload on the next call
	s.current = ""
	return nil
}

// ProfileName reads the heading of the profile page.
func (s *linkedInSession) ProfileName(ctx context.Context, profileURL string) (string, error) {
	if err := s.open(ctx, profileURL); err != nil {
		return "", err
	}

	stepCtx, cancel := s.step(ctx, s.cfg.StepTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(stepCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	name := ParseProfileName(html)
	if name == "" {
		return "", fmt.Errorf("no name found on %s", profileURL)
	}
	return name, nil
}

func (s *linkedInSession) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}

func (s *linkedInSession) click(ctx context.Context, label string) (bool, error) {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(ClickScript(label), &clicked),
		chromedp.Sleep(500*time.Millisecond),
	)
	return clicked, err
}

func orMissing(err error, label string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("no visible %q button", label)
}

// ClickScript returns JavaScript that clicks the first visible button whose text equals
// label or whose aria-label contains it, case-insensitively. It evaluates to true on a click.
func ClickScript(label string) string {
	return fmt.Sprintf(`(() => {
  const want = %q.toLowerCase();
  const candidates = document.querySelectorAll('button, [role="button"], [role="menuitem"]');
  for (const el of candidates) {
    if (el.offsetParent === null || el.disabled) continue;
    const text = (el.innerText || '').trim().toLowerCase();
    const aria = (el.getAttribute('aria-label') || '').toLowerCase();
    if (text === want || aria.includes(want)) {
      el.click();
      return true;
    }
  }
  return false;
})()`, label)
}

// ParseProfileName extracts the display name from a profile page.
func ParseProfileName(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"main h1", "h1"} {
		if name := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); name != "" {
			return name
		}
	}
	return ""
}
