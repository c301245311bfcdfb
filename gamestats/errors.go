package gamestats

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("player not found upstream")
	ErrRateLimited  = errors.New("upstream rate limit exceeded")
	ErrUnauthorized = errors.New("upstream rejected the api key")
	ErrUpstream     = errors.New("upstream request failed")
)

// RateLimitError несёт Retry-After от провайдера. errors.Is(err, ErrRateLimited) == true.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
