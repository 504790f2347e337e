package agentflow

import (
	"context"
	"fmt"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// DefaultMaxAttempts is the total number of backend calls a JSON call site
// makes before giving up.
const DefaultMaxAttempts = 3

// Attempt runs fn until it succeeds or maxAttempts calls have failed.
// The returned error wraps domain.ErrAttemptsExhausted and the last failure.
func Attempt[T any](
	ctx context.Context,
	maxAttempts int,
	fn func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", domain.ErrAttemptsExhausted, maxAttempts, lastErr)
}
