package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/job-outreach/internal/channel"
	"github.com/jonathan/job-outreach/internal/contacts"
	"github.com/jonathan/job-outreach/internal/content"
	"github.com/jonathan/job-outreach/internal/prompts"
	"github.com/jonathan/job-outreach/internal/types"
)

// FallbackGreetingName replaces the contact name placeholder when no name is known.
const FallbackGreetingName = "there"

// Dispatch sends the generated content of every Content Generated row over each enabled channel.
//
// Each channel records its outcome in its own status column and is never retried for a row whose
// column already shows a successful send. The row Status is computed from the outcomes of this pass
// with types.AggregateStatus once every enabled channel the row has a contact for is settled; until
// then the row stays Content Generated with its channel columns written, so the next pass only retries
// the outstanding channel. A channel that cannot be opened leaves its rows untouched; its error is
// returned, joined with any others, after every row has been merged back into t.
func (p *Pipeline) Dispatch(ctx context.Context, t *types.Table) (StageReport, error) {
	report := newStageReport(StageDispatch)
	leads := FilterByStatus(t, types.StatusContentGenerated)
	report.Selected = len(leads)
	if len(leads) == 0 {
		p.log.Info("dispatch finished", "selected", 0)
		return report, nil
	}

	outcomes := make(map[int][]types.ChannelOutcome)
	var errs []error

	if p.opts.UseEmail {
		if err := p.dispatchEmail(ctx, leads, outcomes); err != nil {
			errs = append(errs, err)
		}
	}
	if p.opts.UseLinkedIn {
		if err := p.dispatchLinkedIn(ctx, leads, outcomes); err != nil {
			errs = append(errs, err)
		}
	}

	for _, l := range leads {
		attempts := outcomes[l.Row]
		switch {
		case len(attempts) == 0:
			report.Skipped++
		case p.awaitingChannel(l, attempts):
			report.Pending++
			p.log.Info("row awaits another channel", leadAttrs(l)...)
		default:
			l.SetStatus(types.AggregateStatus(l.Status(), attempts))
			report.record(l.Status())
		}
		if err := t.Merge(l); err != nil {
			errs = append(errs, err)
			continue
		}
		if len(attempts) > 0 {
			p.emit(StageDispatch, l, fmt.Sprintf("%d channel(s) attempted", len(attempts)))
		}
	}

	p.log.Info("dispatch finished", "selected", report.Selected, "skipped", report.Skipped, "pending", report.Pending,
		"email_sent", report.Results[types.StatusEmailSent],
		"email_failed", report.Results[types.StatusEmailFailed],
		"linkedin_sent", report.Results[types.StatusLinkedInSent],
		"linkedin_failed", report.Results[types.StatusLinkedInFailed])
	return report, errors.Join(errs...)
}

// dispatchEmail sends one email per eligible row over a single session.
func (p *Pipeline) dispatchEmail(ctx context.Context, leads []types.Lead, outcomes map[int][]types.ChannelOutcome) error {
	eligible := eligibleFor(leads, types.Lead.HasEmail, types.FieldEmailStatus, types.StatusEmailSent)
	if len(eligible) == 0 {
		return nil
	}

	session, err := p.deps.Email.Dial(ctx)
	if err != nil {
		p.log.Error("email channel unavailable", "error", err, "rows", len(eligible))
		return fmt.Errorf("email channel: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			p.log.Debug("closing email session", "error", err)
		}
	}()

	for _, i := range eligible {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("email channel: %w", err)
		}
		l := &leads[i]

		name := l.Value(types.FieldContactName)
		if name == "" {
			if name = contacts.NameFromEmail(l.Value(types.FieldEmail)); name != "" {
				l.Set(types.FieldContactName, name)
			}
		}

		recipient := l.Value(types.FieldEmail)
		body := personalize(l.Get(types.FieldMessageContent), name)
		subject := personalize(l.Value(types.FieldMessageSubject), name)

		status := types.StatusEmailSent
		if err := session.Send(ctx, recipient, subject, body); err != nil {
			status = types.StatusEmailFailed
			p.log.Warn("email send failed", append(leadAttrs(*l), "recipient", recipient, "error", err)...)
		} else {
			p.log.Info("email sent", append(leadAttrs(*l), "recipient", recipient)...)
		}
		l.Set(types.FieldEmailStatus, string(status))
		outcomes[l.Row] = append(outcomes[l.Row], types.ChannelOutcome{Channel: channel.Email, Status: status})
	}
	return nil
}

// dispatchLinkedIn logs in once and sends one connection request per eligible row,
// pausing after each successful request.
func (p *Pipeline) dispatchLinkedIn(ctx context.Context, leads []types.Lead, outcomes map[int][]types.ChannelOutcome) error {
	eligible := eligibleFor(leads, types.Lead.HasLinkedIn, types.FieldLinkedInStatus, types.StatusLinkedInSent)
	if len(eligible) == 0 {
		return nil
	}

	session, err := p.deps.Network.Login(ctx, p.opts.LinkedInUsername, p.opts.LinkedInPassword)
	if err != nil {
		p.log.Error("linkedin channel unavailable", "error", err, "rows", len(eligible))
		return fmt.Errorf("linkedin channel: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			p.log.Debug("closing linkedin session", "error", err)
		}
	}()

	for n, i := range eligible {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("linkedin channel: %w", err)
		}
		l := &leads[i]
		profile := l.Value(types.FieldLinkedInContact)

		name := p.contactName(ctx, session, l)
		note := content.Truncate(personalize(l.Get(types.FieldLinkedInNote), name), p.opts.NoteLimit)

		status := types.StatusLinkedInSent
		sendErr := session.SendConnectionRequest(ctx, profile, note)
		if sendErr != nil {
			status = types.StatusLinkedInFailed
			p.log.Warn("connection request failed", append(leadAttrs(*l), "profile", profile, "error", sendErr)...)
		} else {
			p.log.Info("connection request sent", append(leadAttrs(*l), "profile", profile)...)
		}
		l.Set(types.FieldLinkedInStatus, string(status))
		outcomes[l.Row] = append(outcomes[l.Row], types.ChannelOutcome{Channel: channel.LinkedIn, Status: status})

		if sendErr == nil && n < len(eligible)-1 && p.opts.RequestDelay > 0 {
			if err := p.sleep(ctx, p.opts.RequestDelay); err != nil {
				return fmt.Errorf("linkedin channel: %w", err)
			}
		}
	}
	return nil
}

// contactName returns the known contact name, or derives one from the profile page or the email
// address and stores it on the lead. An empty result means the generic greeting is used.
func (p *Pipeline) contactName(ctx context.Context, session channel.NetworkSession, l *types.Lead) string {
	if name := l.Value(types.FieldContactName); name != "" {
		return name
	}

	name, err := session.ProfileName(ctx, l.Value(types.FieldLinkedInContact))
	if err != nil {
		p.log.Debug("profile name lookup failed", append(leadAttrs(*l), "error", err)...)
		name = contacts.NameFromEmail(l.Value(types.FieldEmail))
	}
	if name != "" {
		l.Set(types.FieldContactName, name)
	}
	return name
}

// awaitingChannel reports whether an enabled channel the lead has a contact for was neither
// attempted in this pass nor sent in an earlier one.
func (p *Pipeline) awaitingChannel(l types.Lead, attempts []types.ChannelOutcome) bool {
	attempted := make(map[string]bool, len(attempts))
	for _, o := range attempts {
		attempted[o.Channel] = true
	}
	outstanding := func(enabled, hasContact bool, name, statusField string, sent types.Status) bool {
		return enabled && hasContact && !attempted[name] && types.ParseStatus(l.Get(statusField)) != sent
	}
	return outstanding(p.opts.UseEmail, l.HasEmail(), channel.Email, types.FieldEmailStatus, types.StatusEmailSent) ||
		outstanding(p.opts.UseLinkedIn, l.HasLinkedIn(), channel.LinkedIn, types.FieldLinkedInStatus, types.StatusLinkedInSent)
}

// eligibleFor returns the indexes of leads that have the channel's contact and whose
// channel column does not already show a successful send.
func eligibleFor(leads []types.Lead, hasContact func(types.Lead) bool, statusField string, sent types.Status) []int {
	var out []int
	for i, l := range leads {
		if !hasContact(l) {
			continue
		}
		if types.ParseStatus(l.Get(statusField)) == sent {
			continue
		}
		out = append(out, i)
	}
	return out
}

// personalize fills the contact name placeholder, falling back to a generic greeting.
func personalize(text, name string) string {
	if name == "" {
		name = FallbackGreetingName
	}
	return prompts.Format(text, map[string]string{prompts.ContactName: name})
}
