package domain

import "errors"

var (
	// ErrInvalidPayload is returned when a view event cannot be decoded or
	// carries no usable job ids
	ErrInvalidPayload = errors.New("invalid view event payload")

	// ErrMaxRetriesExceeded is returned when a redelivered event fails again
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
