package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	cfg := RetryConfig{Attempts: 5, InitialDelay: time.Millisecond}
	err := RetryWithConfig(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	sentinel := errors.New("down")
	calls := 0
	cfg := RetryConfig{Attempts: 2, InitialDelay: time.Millisecond}
	err := RetryWithConfig(context.Background(), cfg, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapping %v", err, sentinel)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryFatal(t *testing.T) {
	calls := 0
	cfg := RetryConfig{Attempts: 5, InitialDelay: time.Millisecond}
	err := RetryWithConfig(context.Background(), cfg, func() error {
		calls++
		return &FatalError{Err: errors.New("bad request")}
	})
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("err = %v, want FatalError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCooldown(t *testing.T) {
	c := NewCooldown(time.Hour)
	if ok, _ := c.Allow("a"); !ok {
		t.Fatal("first call should pass")
	}
	ok, wait := c.Allow("a")
	if ok {
		t.Fatal("second call should be throttled")
	}
	if wait <= 0 || wait > time.Hour {
		t.Errorf("wait = %v", wait)
	}
	if ok, _ := c.Allow("b"); !ok {
		t.Error("other key should pass")
	}
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)
	lim.Observe(429)
	if got := lim.CurrentLimit(); got != 2 {
		t.Errorf("after 429 limit = %v, want 2", got)
	}
	lim.Observe(500)
	lim.Observe(503)
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("limit = %v, want floor 1", got)
	}

	var nilLim *AdaptiveLimiter
	if err := nilLim.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter Wait: %v", err)
	}
}
