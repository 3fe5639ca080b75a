package zecat

import (
	"fmt"
	"time"
)

// DefaultRateLimitWait is used when a 429 response carries no usable
// Retry-After header.
const DefaultRateLimitWait = 60 * time.Second

// StatusError is a non-2xx response from the supplier API. The body snippet is
// kept for the failure ledger.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("zecat: HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// RateLimitError is an explicit "too many requests" response. It implements
// retry.DelayHinter so the retry policy honors the server-specified wait
// instead of the exponential backoff schedule.
type RateLimitError struct {
	Delay time.Duration
	URL   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("zecat: rate limited on %s, retry after %s", e.URL, e.Delay)
}

// RetryDelay returns the server-specified wait before the next attempt.
func (e *RateLimitError) RetryDelay() time.Duration {
	return e.Delay
}
