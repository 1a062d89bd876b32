package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_Delay(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	for attempt, expected := range want {
		if got := policy.Delay(attempt); got != expected {
			t.Fatalf("attempt %d: got=%s want=%s", attempt, got, expected)
		}
	}

	capped := RetryPolicy{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	if got := capped.Delay(5); got != 3*time.Second {
		t.Fatalf("expected capped delay, got %s", got)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	errTransient := errors.New("503")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil,
		func(context.Context, int) error {
			calls++
			return errTransient
		})

	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, errTransient) {
		t.Fatalf("expected exhausted error wrapping the last failure, got %v", err)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	errPermanent := errors.New("401")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond},
		func(err error) bool { return !errors.Is(err, errPermanent) },
		func(context.Context, int) error {
			calls++
			return errPermanent
		})

	if calls != 1 || !errors.Is(err, errPermanent) || errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected a single attempt returning the permanent error, calls=%d err=%v", calls, err)
	}
}

func TestRetry_SucceedsAfterFailure(t *testing.T) {
	t.Parallel()

	attempts := make([]int, 0, 2)
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil,
		func(_ context.Context, attempt int) error {
			attempts = append(attempts, attempt)
			if attempt == 0 {
				return errors.New("flaky")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(attempts) != 2 || attempts[1] != 1 {
		t.Fatalf("unexpected attempts %v", attempts)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	err := Retry(ctx, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}, nil,
		func(context.Context, int) error {
			cancel()
			return errors.New("fail")
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
