package snapshot

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultRetryDelay = 100 * time.Millisecond

// withRetry runs fn until it succeeds, maxRetries retries are spent, or ctx ends. The
// delay doubles after every failure. onRetry, when set, sees every failed attempt
// numbered from 1. The last error is returned unwrapped.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, onRetry func(attempt int, err error), fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}
	return retry.Do(
		func() error { return fn(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)+1),
		retry.Delay(baseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if onRetry != nil {
				onRetry(int(n)+1, err)
			}
		}),
	)
}
