package governor

import (
	"errors"
	"fmt"
	"time"
)

// ErrClosed is delivered to operations still pending when the Governor closes,
// and to operations submitted afterwards.
var ErrClosed = errors.New("governor closed")

// ThrottledError is returned by an operation when the provider signalled that
// the request rate is over quota (HTTP 429).
type ThrottledError struct {
	StatusCode int
	// RetryAfter is the provider's hint, zero when absent.
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *ThrottledError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider throttled request: status %d (retry after %s)", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("provider throttled request: status %d", e.StatusCode)
}

// RetryExhaustedError is delivered when an operation was throttled on every
// attempt of its budget.
type RetryExhaustedError struct {
	Attempts int
	Last     *ThrottledError
}

// Error implements the error interface
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d throttled attempts", e.Attempts)
}

// Unwrap returns the last throttling error.
func (e *RetryExhaustedError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}

// IsThrottled reports whether err carries a ThrottledError.
func IsThrottled(err error) bool {
	var t *ThrottledError
	return errors.As(err, &t)
}

// IsRetryExhausted reports whether err carries a RetryExhaustedError.
func IsRetryExhausted(err error) bool {
	var r *RetryExhaustedError
	return errors.As(err, &r)
}
