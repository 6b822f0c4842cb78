// Package types provides type definitions for structured data used throughout the job-outreach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Status is the control value of a lead row. It decides which pipeline stage may act on the row.
type Status string

const (
	// StatusNewJob is the initial state of a row appended by a human or an upstream scraper.
	StatusNewJob Status = "New Job"
	// StatusContactRequired marks a row with neither an email nor a profile URL.
	StatusContactRequired Status = "Contact Required"
	// StatusContentGenerated marks a row whose six content fields are populated.
	StatusContentGenerated Status = "Content Generated"
	// StatusEmailSent is the terminal state after a successful email dispatch.
	StatusEmailSent Status = "Email Sent"
	// StatusEmailFailed is the terminal state after a failed email dispatch.
	StatusEmailFailed Status = "Failed to send email"
	// StatusLinkedInSent is the terminal state after a successful connection request.
	StatusLinkedInSent Status = "LinkedIn Connection Sent"
	// StatusLinkedInFailed is the terminal state after a failed connection request.
	StatusLinkedInFailed Status = "Failed to send LinkedIn connection request"
	// StatusGenerationFailed is the terminal state after a failed content generation.
	StatusGenerationFailed Status = "ERROR: Failed to generate custom contents"
)

// AllStatuses lists every state in pipeline order.
var AllStatuses = []Status{
	StatusNewJob,
	StatusContactRequired,
	StatusContentGenerated,
	StatusEmailSent,
	StatusEmailFailed,
	StatusLinkedInSent,
	StatusLinkedInFailed,
	StatusGenerationFailed,
}

// transitions holds the forward edges of the lead state machine.
var transitions = map[Status][]Status{
	StatusNewJob:           {StatusContentGenerated, StatusContactRequired, StatusGenerationFailed},
	StatusContactRequired:  {StatusContentGenerated, StatusContactRequired, StatusGenerationFailed},
	StatusContentGenerated: {StatusEmailSent, StatusEmailFailed, StatusLinkedInSent, StatusLinkedInFailed},
}

// ParseStatus converts a raw cell value into a Status.
// Empty and unrecognised values are treated as StatusNewJob.
func ParseStatus(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	for _, s := range AllStatuses {
		if strings.EqualFold(trimmed, string(s)) {
			return s
		}
	}
	return StatusNewJob
}

// String returns the cell value of the status.
func (s Status) String() string {
	return string(s)
}

// IsSent reports whether a message went out on some channel.
func (s Status) IsSent() bool {
	return s == StatusEmailSent || s == StatusLinkedInSent
}

// IsFailure reports whether the status is one of the manual-remediation failure states.
func (s Status) IsFailure() bool {
	return s == StatusEmailFailed || s == StatusLinkedInFailed || s == StatusGenerationFailed
}

// IsTerminal reports whether no stage will act on the row until it is edited by hand.
func (s Status) IsTerminal() bool {
	return s.IsSent() || s.IsFailure()
}

// CanTransition reports whether moving from s to next is a forward edge of the state machine.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ChannelOutcome is the result of one channel attempt during a dispatch pass.
type ChannelOutcome struct {
	Channel string
	Status  Status
}

// AggregateStatus computes the row Status from the channel attempts made in one pass.
// A failed channel wins over a successful one, email failures before network failures;
// otherwise the last successful channel determines the value. With no attempts, current is returned.
func AggregateStatus(current Status, outcomes []ChannelOutcome) Status {
	if len(outcomes) == 0 {
		return current
	}
	for _, failed := range []Status{StatusEmailFailed, StatusLinkedInFailed} {
		for _, o := range outcomes {
			if o.Status == failed {
				return failed
			}
		}
	}
	return outcomes[len(outcomes)-1].Status
}
