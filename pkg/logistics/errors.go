package logistics

import (
	"errors"
	"fmt"
)

// ConflictError indicates the provider already holds a logistics order for
// this reference. It is never retryable; callers must route the order to a
// permanent error state.
type ConflictError struct {
	Message string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("logistics order conflict: %s", e.Message)
}

// SubmissionError indicates any other upstream failure (auth, validation,
// 5xx, timeout). It is retryable up to the attempt cap.
type SubmissionError struct {
	Code       string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("logistics submission failed (%s): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("logistics submission failed (%s): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// NewSubmissionError creates a new SubmissionError.
func NewSubmissionError(code, message string) *SubmissionError {
	return &SubmissionError{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *SubmissionError) WithCause(err error) *SubmissionError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *SubmissionError) WithStatusCode(code int) *SubmissionError {
	e.StatusCode = code
	return e
}

// IsConflict reports whether err carries a provider conflict.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsRetryable reports whether err is a transient submission failure.
func IsRetryable(err error) bool {
	var submission *SubmissionError
	return errors.As(err, &submission)
}
