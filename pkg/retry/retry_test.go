package retry

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wakeguard/wakeguard-go/pkg/notify"
	"github.com/wakeguard/wakeguard-go/pkg/suppress"
)

func fastOptions() Options {
	opts := DefaultOptions()
	opts.RetryDelay = 2 * time.Millisecond
	opts.PerAttemptTimeout = 200 * time.Millisecond
	return opts
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var calls int
	val, err := Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}, fastOptions())

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if val != "ok" {
		t.Errorf("val = %q, want %q", val, "ok")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoFailTwiceThenSucceed(t *testing.T) {
	var calls, refreshes int
	opts := fastOptions()
	opts.IsAuthError = func(error) bool { return false }
	opts.Refresh = func(context.Context) error {
		refreshes++
		return nil
	}

	start := time.Now()
	val, err := Do(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, opts)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if val != 42 {
		t.Errorf("val = %d, want 42", val)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if refreshes != 0 {
		t.Errorf("refreshes = %d, want 0 for non-auth failures", refreshes)
	}
	// Two linear delays: 1*step + 2*step
	if elapsed < 6*time.Millisecond {
		t.Errorf("elapsed = %v, expected at least two linear delays", elapsed)
	}
}

func TestDoExhausted(t *testing.T) {
	var calls int
	cause := errors.New("broken")

	val, err := Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", cause
	}, fastOptions())

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, cause) {
		t.Error("exhaustion error does not wrap the last cause")
	}
	if val != "" {
		t.Errorf("val = %q, want zero value", val)
	}
	if calls != DefaultMaxRetries {
		t.Errorf("calls = %d, want %d", calls, DefaultMaxRetries)
	}
}

func TestDoAuthRefreshDoesNotConsumeAttempt(t *testing.T) {
	authErr := errors.New("401 unauthorized")
	var calls, refreshes int

	opts := fastOptions()
	opts.IsAuthError = func(err error) bool { return errors.Is(err, authErr) }
	opts.Refresh = func(context.Context) error {
		refreshes++
		return nil
	}

	_, err := Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, authErr
	}, opts)

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	// One bonus attempt beyond MaxRetries for the single refresh
	if calls != DefaultMaxRetries+1 {
		t.Errorf("calls = %d, want %d", calls, DefaultMaxRetries+1)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want exactly 1", refreshes)
	}
}

func TestDoAuthRefreshThenSuccess(t *testing.T) {
	authErr := errors.New("jwt expired")
	var calls, refreshes int

	opts := fastOptions()
	opts.IsAuthError = func(err error) bool { return errors.Is(err, authErr) }
	opts.Refresh = func(context.Context) error {
		refreshes++
		return nil
	}

	val, err := Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", authErr
		}
		return "recovered", nil
	}, opts)

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if val != "recovered" {
		t.Errorf("val = %q", val)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoFailedRefreshFallsBackToNormalRetry(t *testing.T) {
	authErr := errors.New("session expired")
	var calls, refreshes int

	opts := fastOptions()
	opts.IsAuthError = func(err error) bool { return errors.Is(err, authErr) }
	opts.Refresh = func(context.Context) error {
		refreshes++
		return errors.New("refresh unavailable")
	}

	_, err := Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, authErr
	}, opts)

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	// Failed refresh consumes the special case without granting a bonus slot
	if calls != DefaultMaxRetries {
		t.Errorf("calls = %d, want %d", calls, DefaultMaxRetries)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
}

func TestDoPerAttemptTimeout(t *testing.T) {
	var calls atomic.Int32

	opts := fastOptions()
	opts.MaxRetries = 2
	opts.PerAttemptTimeout = 10 * time.Millisecond

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls.Add(1)
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}, opts)

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, ErrAttemptTimeout) {
		t.Errorf("err = %v, want ErrAttemptTimeout in chain", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (timeouts are retried)", calls.Load())
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	opts := fastOptions()
	opts.RetryDelay = time.Hour // cancellation must win over the delay

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, func(context.Context) (int, error) {
			return 0, errors.New("fail")
		}, opts)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoExhaustionNotification(t *testing.T) {
	var messages []string
	opts := fastOptions()
	opts.Describe = "saving expense"
	opts.Notifier = notify.Funcs{
		ErrorFn: func(msg string, _ ...string) { messages = append(messages, msg) },
	}

	_, _ = Do(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	}, opts)

	if len(messages) != 1 {
		t.Fatalf("got %d notifications, want 1", len(messages))
	}
	if want := "saving expense failed after repeated attempts"; !strings.Contains(messages[0], want) {
		t.Errorf("message = %q, want prefix %q", messages[0], want)
	}
}

func TestDoExhaustionSuppressedByWindow(t *testing.T) {
	var notified bool
	gate := suppress.NewGate()
	gate.BeginWindow(time.Minute)

	opts := fastOptions()
	opts.Gate = gate
	opts.Notifier = notify.Funcs{
		ErrorFn: func(string, ...string) { notified = true },
	}

	_, _ = Do(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("network down")
	}, opts)

	if notified {
		t.Error("exhaustion notification surfaced inside suppression window")
	}
}

func TestDoAuthExhaustionNeverSuppressed(t *testing.T) {
	authErr := errors.New("401")
	gate := suppress.NewGate()
	gate.BeginWindow(time.Minute)

	var terminal []string
	var notified bool

	opts := fastOptions()
	opts.IsAuthError = func(err error) bool { return errors.Is(err, authErr) }
	opts.Gate = gate
	opts.Notifier = notify.Funcs{
		ErrorFn: func(string, ...string) { notified = true },
	}
	opts.OnAuthExhausted = func(reason string) { terminal = append(terminal, reason) }

	_, err := Do(context.Background(), func(context.Context) (int, error) {
		return 0, authErr
	}, opts)

	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	// The toast obeys the window, the terminal hook does not
	if notified {
		t.Error("toast surfaced inside suppression window")
	}
	if len(terminal) != 1 {
		t.Errorf("OnAuthExhausted fired %d times, want exactly 1", len(terminal))
	}
}

func TestDoAuthExhaustionDistinctWording(t *testing.T) {
	authErr := errors.New("unauthorized")
	var messages []string

	opts := fastOptions()
	opts.IsAuthError = func(err error) bool { return errors.Is(err, authErr) }
	opts.Notifier = notify.Funcs{
		ErrorFn: func(msg string, _ ...string) { messages = append(messages, msg) },
	}

	_, _ = Do(context.Background(), func(context.Context) (int, error) {
		return 0, authErr
	}, opts)

	if len(messages) != 1 {
		t.Fatalf("got %d notifications, want 1", len(messages))
	}
	if !strings.Contains(messages[0], "session has expired") {
		t.Errorf("auth exhaustion message lacks session wording: %q", messages[0])
	}
}
