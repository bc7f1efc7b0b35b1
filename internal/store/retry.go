package store

import (
	"context"
	"log/slog"
)

// DefaultMaxAttempts is how many times a read query is tried before its
// error propagates.
const DefaultMaxAttempts = 3

// withRetry runs fn up to attempts times with no delay between tries.
// After each failure reset is called (when non-nil) so a backend can clear
// aborted transaction state before the next attempt. The final attempt's
// error is returned unchanged.
//
// Only idempotent reads go through this helper; the import write path never
// does.
func withRetry[T any](
	ctx context.Context,
	logger *slog.Logger,
	op string,
	attempts int,
	reset func(context.Context),
	fn func(context.Context) (T, error),
) (T, error) {
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}

	var zero T
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var result T
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}

		if reset != nil {
			reset(ctx)
		}
		if attempt < attempts {
			logger.Warn("query failed, retrying",
				"op", op, "attempt", attempt, "max_attempts", attempts, "error", err)
		}
	}
	return zero, err
}
