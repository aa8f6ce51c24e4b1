package opensubtitles

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingLink marks a 2xx download response without a link field.
// Not retryable: the provider answered, the payload is just unusable.
var ErrMissingLink = errors.New("download response missing link")

// AuthError is a failed authentication with the subtitle provider.
// Fatal to the calling operation and never retried internally.
type AuthError struct {
	StatusCode int
	Reason     string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("opensubtitles authentication failed: %s (status %d)", e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("opensubtitles authentication failed: %s", e.Reason)
}

// StatusError is a non-2xx response from a search or download endpoint
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opensubtitles API returned status %d: %s", e.StatusCode, e.Body)
}

// RateLimitError signals that the provider asked us to back off.
// RetryAfter is the provider-requested wait before the next attempt.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("opensubtitles rate limited (status %d), retry after %s", e.StatusCode, e.RetryAfter)
}
