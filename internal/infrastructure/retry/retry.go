// Package retry runs provider calls with exponential backoff.
package retry

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"signit-esign/internal/config"
)

// Policy controls how often and how fast a failed call is retried
type Policy struct {
	MaxRetries      uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// NewPolicy builds the default policy from the SignIt settings
func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		MaxRetries:      cfg.SignIt.MaxRetries,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsed:      cfg.SignIt.Timeout(),
	}
}

// Do runs op until it succeeds, returns a permanent error, or the policy is
// exhausted. MaxRetries counts retries, so op runs at most MaxRetries+1 times.
func Do[T any](ctx context.Context, p Policy, op backoff.Operation[T]) (T, error) {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxRetries + 1),
	}
	if p.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.MaxElapsed))
	}

	return backoff.Retry(ctx, op, opts...)
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsRetryableStatus reports whether a provider status code is transient
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
