package portal

import (
	"errors"
	"fmt"
)

// Generic messages shown when the server gives none.
const (
	MessageTransport          = "An error occurred."
	MessageVerificationFailed = "Verification failed."
	MessageSubmissionFailed   = "Submission failed"
	MessageCreateFailed       = "Failed to create hackathon"
	MessageListFailed         = "Failed to load hackathons. Please check your connection."
	MessageDashboardFailed    = "Failed to load submissions. Please try again."
	MessageMissingHackathonID = "Hackathon ID is missing"
	MessageCriteriaFailed     = "Failed to save criteria"
	MessageIdentityUnresolved = "Judge ID is required"
)

var (
	// ErrBusy is returned when the same action is already in flight.
	ErrBusy = errors.New("portal: action already in progress")
	// ErrClosed is returned by components after Close.
	ErrClosed = errors.New("portal: component closed")
	// ErrIdentityUnresolved is returned when a judge action runs before the
	// identity provider has produced a judge id. No request is sent.
	ErrIdentityUnresolved = errors.New("portal: judge identity not resolved")
	// ErrMissingHackathonID is returned when no hackathon id can be resolved.
	ErrMissingHackathonID = errors.New("portal: hackathon id is missing")
	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("portal: required field is empty")
	// ErrNotVerified is returned when a submission flow is requested before
	// verification succeeded.
	ErrNotVerified = errors.New("portal: hackathon not verified")
)

// TransportError wraps a failure to reach the server or read its reply.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return MessageTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx reply. Message is the server's error text when
// present, otherwise the operation's fallback.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Rejection is a well-formed negative verification. It is a normal result,
// not a fault.
type Rejection struct {
	Message string
}

func (e *Rejection) Error() string {
	return e.Message
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var transport *TransportError
	var status *StatusError
	var rejection *Rejection
	switch {
	case errors.As(err, &transport):
		return MessageTransport
	case errors.As(err, &status):
		return status.Message
	case errors.As(err, &rejection):
		return rejection.Message
	case errors.Is(err, ErrMissingHackathonID):
		return MessageMissingHackathonID
	case errors.Is(err, ErrIdentityUnresolved):
		return MessageIdentityUnresolved
	default:
		return err.Error()
	}
}
