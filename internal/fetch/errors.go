package fetch

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrInvalidInput means the URL is empty, malformed or points at nothing usable.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAccessDenied means the resource sits behind a sign-in wall or refused access.
	ErrAccessDenied = errors.New("access denied")
	// ErrTransientNetwork means the transport failed or the server errored; a retry may succeed.
	ErrTransientNetwork = errors.New("transient network error")
)

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func invalidInput(url, msg string, cause error) *Error {
	return &Error{URL: url, Message: msg, Kind: ErrInvalidInput, Cause: cause}
}

func accessDenied(url, msg string) *Error {
	return &Error{URL: url, Message: msg, Kind: ErrAccessDenied}
}

func transient(url, msg string, cause error) *Error {
	return &Error{URL: url, Message: msg, Kind: ErrTransientNetwork, Cause: cause}
}
