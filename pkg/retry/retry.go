package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMaxRetries is the retry budget after the initial attempt.
	DefaultMaxRetries = 3
	// DefaultInitialDelay is the wait before the first retry; it doubles
	// on every subsequent retry.
	DefaultInitialDelay = time.Second
)

// Sleeper waits for the backoff delay. Injectable so tests run without
// wall-clock waiting.
type Sleeper func(ctx context.Context, d time.Duration) error

// ExhaustedError is the terminal failure once the retry budget is spent.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Options tunes a Do call. Zero values fall back to the defaults; the
// default sleeper honors context cancellation.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	Sleep        Sleeper
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	return o
}

// Do invokes op, retrying on failure with exponentially doubling delays
// until the budget runs out. The first success returns immediately; no
// jitter is applied and concurrent calls are not coordinated.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) (T, error) {
	var zero T
	opts = opts.withDefaults()

	delay := opts.InitialDelay
	attempts := 0
	var lastErr error

	for {
		result, err := op(ctx)
		attempts++
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempts > opts.MaxRetries {
			return zero, &ExhaustedError{Attempts: attempts, Last: lastErr}
		}
		if err := opts.Sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay *= 2
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
