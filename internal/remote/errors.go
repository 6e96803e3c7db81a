package remote

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError is the backend's throttling signal. RetryAfter carries the
// server-provided wait when the response named one; HasRetryAfter
// distinguishes "no header" from "zero seconds".
type RateLimitError struct {
	RetryAfter    time.Duration
	HasRetryAfter bool
}

func (e *RateLimitError) Error() string {
	if e.HasRetryAfter {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// FaultError is any non-throttling remote failure (4xx/5xx). It is never
// retried: only transient capacity errors get the backoff treatment,
// validation and logic errors must surface immediately.
type FaultError struct {
	Status int
	Detail string
}

func (e *FaultError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("remote fault (status %d)", e.Status)
	}
	return fmt.Sprintf("remote fault (status %d): %s", e.Status, e.Detail)
}

// IsRateLimited reports whether err carries a throttling signal.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// RetryAfterOf extracts the server-provided wait from a throttling error.
func RetryAfterOf(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.HasRetryAfter {
		return rl.RetryAfter, true
	}
	return 0, false
}

// IsFault reports whether err is a non-throttling remote failure.
func IsFault(err error) bool {
	var f *FaultError
	return errors.As(err, &f)
}
