package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every component. Components return these (or the
// typed errors below wrapping them) instead of raw transport errors.
var (
	// ErrAuth means the session is missing, expired or was rejected with 401.
	// Receiving it forces a logout.
	ErrAuth = errors.New("authentication required")

	// ErrNotFound is returned for 404 responses. For the profile endpoint it is
	// the normal "needs onboarding" branch, not a failure.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("network failure")

	// ErrServer covers 5xx and unexpected responses from the backend.
	ErrServer = errors.New("server error")

	// ErrInvalidSession is returned by Session.Validate for partial sessions.
	ErrInvalidSession = errors.New("invalid session")

	// ErrIngestionInFlight rejects a second ingestion for a user while one runs.
	ErrIngestionInFlight = errors.New("course ingestion already in progress")

	// ErrStale marks a result superseded by a newer request for the same resource.
	ErrStale = errors.New("result superseded by a newer request")
)

// ValidationError reports malformed input. Message is shown to the user
// verbatim, so it carries the backend's own wording when there is one.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// LoadError is a retryable failure to load remote data. It wraps ErrNetwork
// or ErrServer; the user retries manually.
type LoadError struct {
	Operation string
	Err       error
}

// Error implements the error interface for LoadError.
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("load %s failed", e.Operation)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err as a LoadError for the named operation.
func NewLoadError(operation string, err error) *LoadError {
	return &LoadError{Operation: operation, Err: err}
}

// PartialFailureError is returned by course ingestion when the course was
// registered but the strategy could not be generated. The course is not
// rolled back; the next dashboard load shows it without a strategy.
type PartialFailureError struct {
	CourseID int64
	Err      error
}

// Error implements the error interface for PartialFailureError.
func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("course %d registered but strategy generation failed: %v", e.CourseID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a failure the user may retry by hand.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}

// RemoteMessage returns the user-facing message the backend attached to the
// failure wrapped by err, or "" when there is none.
func RemoteMessage(err error) string {
	var m interface{ RemoteMessage() string }
	if errors.As(err, &m) {
		return m.RemoteMessage()
	}
	return ""
}
