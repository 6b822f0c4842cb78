// Package channel delivers outreach over email and professional-network connection requests.
//
// Each channel is acquired once per dispatch pass as a session and must be closed
// when the pass ends. Sessions are not safe for concurrent use.
package channel

import (
	"context"
	"fmt"
)

// Channel names used in logs and errors.
const (
	Email    = "email"
	LinkedIn = "linkedin"
)

// EmailDialer opens authenticated mail sessions.
type EmailDialer interface {
	Dial(ctx context.Context) (EmailSession, error)
}

// EmailSession sends messages over one authenticated connection.
type EmailSession interface {
	Send(ctx context.Context, recipient, subject, body string) error
	Close() error
}

// NetworkDialer logs in to the professional network.
type NetworkDialer interface {
	Login(ctx context.Context, username, password string) (NetworkSession, error)
}

// NetworkSession is a logged-in browser session.
type NetworkSession interface {
	// SendConnectionRequest invites the profile owner with a note. The caller enforces the note length.
	SendConnectionRequest(ctx context.Context, profileURL, note string) error
	// ProfileName returns the display name shown on the profile page.
	ProfileName(ctx context.Context, profileURL string) (string, error)
	Close() error
}

// LoginError represents a failure to open a channel session
type LoginError struct {
	Channel string
	Message string
	Cause   error
}

func (e *LoginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s login failed: %s: %v", e.Channel, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s login failed: %s", e.Channel, e.Message)
}

func (e *LoginError) Unwrap() error {
	return e.Cause
}

// SendError represents a failed delivery to one recipient
type SendError struct {
	Channel   string
	Recipient string
	Step      string
	Cause     error
}

func (e *SendError) Error() string {
	msg := fmt.Sprintf("%s send to %s failed", e.Channel, e.Recipient)
	if e.Step != "" {
		msg += " at " + e.Step
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SendError) Unwrap() error {
	return e.Cause
}
