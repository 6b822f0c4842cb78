package pipeline

import (
	"context"

	"github.com/jonathan/job-outreach/internal/contacts"
	"github.com/jonathan/job-outreach/internal/types"
)

// DiscoverContacts makes sure every New Job or Contact Required row has a contact before generation.
// Rows that end without an email or profile URL are set to Contact Required; rows with a contact
// keep their status and become eligible for generation. Lookup failures never fail the stage;
// only a cancelled context does.
func (p *Pipeline) DiscoverContacts(ctx context.Context, t *types.Table) (StageReport, error) {
	report := newStageReport(StageDiscovery)
	leads := FilterByStatus(t, types.StatusNewJob, types.StatusContactRequired)
	report.Selected = len(leads)

	for _, l := range leads {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		message := "contact present"
		if !l.HasContact() {
			if email, source := p.findEmail(ctx, l); email != "" {
				l.Set(types.FieldEmail, email)
				message = "email found in " + source
				p.log.Info("contact email discovered", append(leadAttrs(l), "source", source)...)
			}
		}

		if !l.HasContact() {
			l.SetStatus(types.StatusContactRequired)
			message = "no contact"
			p.log.Debug("contact required", leadAttrs(l)...)
		}

		if err := t.Merge(l); err != nil {
			return report, err
		}
		report.record(l.Status())
		p.emit(StageDiscovery, l, message)
	}

	p.log.Info("contact discovery finished", "selected", report.Selected,
		"contact_required", report.Results[types.StatusContactRequired])
	return report, nil
}

// findEmail tries the Contact Details column, the generator and the posting page in that order.
func (p *Pipeline) findEmail(ctx context.Context, l types.Lead) (email, source string) {
	details := l.Value(types.FieldContactDetails)

	if email := contacts.FindEmail(details); email != "" {
		return email, "contact details"
	}

	if p.opts.ExtractEmails && details != "" {
		email, err := p.deps.Generator.ExtractEmail(ctx, details)
		if err == nil && email != "" {
			return email, "contact details (model)"
		}
		if err != nil {
			p.log.Debug("email extraction failed", append(leadAttrs(l), "error", err)...)
		}
	}

	if p.opts.ScrapePostings {
		if link := l.Value(types.FieldLink); link != "" {
			email, err := p.deps.Scraper.FindEmail(ctx, link)
			if err == nil && email != "" {
				return email, "posting page"
			}
			if err != nil {
				p.log.Debug("posting scrape failed", append(leadAttrs(l), "url", link, "error", err)...)
			}
		}
	}

	return "", ""
}
