package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fakeSleeper(waits *[]time.Duration) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	var waits []time.Duration
	invocations := 0

	result, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		if invocations < 3 {
			return "", errors.New("network down")
		}
		return "ok", nil
	}, Options{MaxRetries: 3, InitialDelay: 100 * time.Millisecond, Sleep: fakeSleeper(&waits)})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("unexpected result %q", result)
	}
	if invocations != 3 {
		t.Fatalf("expected exactly 3 invocations, got %d", invocations)
	}

	var total time.Duration
	for _, w := range waits {
		total += w
	}
	if total < 300*time.Millisecond {
		t.Fatalf("expected total wait >= 300ms (100+200), got %v", total)
	}
}

func TestDoDoublesDelayEachRetry(t *testing.T) {
	var waits []time.Duration

	_, _ = Do(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("always failing")
	}, Options{MaxRetries: 3, InitialDelay: 50 * time.Millisecond, Sleep: fakeSleeper(&waits)})

	expected := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
	if len(waits) != len(expected) {
		t.Fatalf("expected %d sleeps, got %d", len(expected), len(waits))
	}
	for i, want := range expected {
		if waits[i] != want {
			t.Fatalf("sleep %d: expected %v got %v", i, want, waits[i])
		}
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	var waits []time.Duration
	invocations := 0
	boom := errors.New("boom")

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		invocations++
		return 0, boom
	}, Options{MaxRetries: 2, InitialDelay: time.Millisecond, Sleep: fakeSleeper(&waits)})

	if invocations != 3 {
		t.Fatalf("expected 1 initial + 2 retries = 3 attempts, got %d", invocations)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", exhausted.Attempts)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected exhausted error to unwrap to the last failure")
	}
}

func TestDoReturnsImmediatelyOnSuccess(t *testing.T) {
	var waits []time.Duration

	result, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	}, Options{Sleep: fakeSleeper(&waits)})

	if err != nil || result != 42 {
		t.Fatalf("unexpected result %d err %v", result, err)
	}
	if len(waits) != 0 {
		t.Fatalf("expected no sleeps on first-attempt success")
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	invocations := 0
	_, err := Do(ctx, func(ctx context.Context) (int, error) {
		invocations++
		return 0, errors.New("fail")
	}, Options{MaxRetries: 5, InitialDelay: time.Millisecond})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if invocations != 1 {
		t.Fatalf("expected a single attempt before the cancelled sleep, got %d", invocations)
	}
}
