// Package rendering renders interview reports and transcripts as PDF documents.
package rendering

import "fmt"

// InputError represents a report that cannot be rendered as given
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid report: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid report: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
