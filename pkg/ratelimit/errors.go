package ratelimit

import (
	"errors"
	"fmt"
)

// Rejection reasons. All share the same error kind (*RateLimitError); the
// reason distinguishes why the admission could not be granted.
const (
	// ReasonExceeded means no token was available and queuing is disabled.
	ReasonExceeded = "rate limit exceeded"

	// ReasonQueueFull means no token was available and the wait queue is at
	// its maximum size.
	ReasonQueueFull = "rate limit queue full"

	// ReasonReset means the caller was queued when the limiter was reset.
	ReasonReset = "rate limiter reset"

	// ReasonDisposed means the limiter was disposed, either while the caller
	// was queued or before it could queue.
	ReasonDisposed = "rate limiter disposed"
)

// RateLimitError is returned when an admission cannot be granted.
// It includes the configured limit and the queue occupancy at failure time.
type RateLimitError struct {
	// Reason is one of the Reason* constants.
	Reason string

	// Limit is the configured bucket capacity.
	Limit int

	// QueueSize is the number of queued admissions when the error occurred.
	QueueSize int
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.QueueSize > 0 {
		return fmt.Sprintf("%s (limit %d, %d queued)", e.Reason, e.Limit, e.QueueSize)
	}
	return fmt.Sprintf("%s (limit %d)", e.Reason, e.Limit)
}

// IsRateLimitError reports whether err is (or wraps) a *RateLimitError.
func IsRateLimitError(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
