package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wakeguard/wakeguard-go/pkg/notify"
	"github.com/wakeguard/wakeguard-go/pkg/suppress"
)

// Retry defaults.
const (
	// DefaultMaxRetries is the default attempt bound.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default linear backoff step.
	DefaultRetryDelay = 1 * time.Second

	// DefaultPerAttemptTimeout bounds a single attempt.
	DefaultPerAttemptTimeout = 8 * time.Second
)

// Retry errors.
var (
	// ErrExhausted indicates every attempt failed.
	ErrExhausted = errors.New("all retry attempts exhausted")

	// ErrAttemptTimeout indicates a single attempt exceeded its timeout.
	ErrAttemptTimeout = errors.New("attempt timed out")
)

// Operation is the unit of work being retried.
type Operation[T any] func(ctx context.Context) (T, error)

// Options configures a Do call. Use DefaultOptions as the base; the zero
// value disables exhaustion notifications.
type Options struct {
	// MaxRetries bounds normal attempts. Zero selects the default.
	MaxRetries int

	// RetryDelay is the linear backoff step. Zero selects the default.
	RetryDelay time.Duration

	// PerAttemptTimeout bounds each attempt. Zero selects the default.
	PerAttemptTimeout time.Duration

	// NotifyOnExhaustion surfaces an error notification when all
	// attempts fail (subject to the suppression gate).
	NotifyOnExhaustion bool

	// Describe names the operation in notifications and errors.
	// Empty selects "operation".
	Describe string

	// IsAuthError classifies authentication failures. May be nil, in
	// which case no failure is auth-classified.
	IsAuthError func(error) bool

	// Refresh performs the one-shot session refresh for auth failures.
	// May be nil.
	Refresh func(ctx context.Context) error

	// Gate is consulted before surfacing the exhaustion notification.
	// May be nil (never suppressed).
	Gate *suppress.Gate

	// Notifier receives the exhaustion notification. May be nil.
	Notifier notify.Notifier

	// OnAuthExhausted is invoked when auth-classified failures exhaust
	// every attempt; the coordinator hooks its session-failed signal
	// here. Never suppressed. May be nil.
	OnAuthExhausted func(reason string)
}

// DefaultOptions returns the standard options: 3 retries, 1s linear delay
// step, 8s per-attempt timeout, notification on exhaustion.
func DefaultOptions() Options {
	return Options{
		MaxRetries:         DefaultMaxRetries,
		RetryDelay:         DefaultRetryDelay,
		PerAttemptTimeout:  DefaultPerAttemptTimeout,
		NotifyOnExhaustion: true,
	}
}

// Do runs the operation with bounded retries per the options. On success
// the value is returned as soon as any attempt succeeds. On exhaustion
// the zero value is returned with ErrExhausted wrapping the last cause.
func Do[T any](ctx context.Context, op Operation[T], opts Options) (T, error) {
	var zero T

	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.PerAttemptTimeout <= 0 {
		opts.PerAttemptTimeout = DefaultPerAttemptTimeout
	}
	if opts.Describe == "" {
		opts.Describe = "operation"
	}

	var delays backoff.BackOff = NewLinear(opts.RetryDelay)
	delays.Reset()

	var lastErr error
	refreshUsed := false

	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		val, err := runAttempt(ctx, op, opts.PerAttemptTimeout)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if err := ctx.Err(); err != nil {
			return zero, err
		}

		// Auth failures get one refresh-then-retry that does not
		// consume an attempt slot. At most once per call.
		if !refreshUsed && opts.Refresh != nil && opts.isAuth(err) {
			refreshUsed = true
			if refreshErr := opts.Refresh(ctx); refreshErr == nil {
				attempt--
				continue
			}
			// Refresh failed: fall through to the normal backoff path.
		}

		if attempt < opts.MaxRetries-1 {
			select {
			case <-time.After(delays.NextBackOff()):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	opts.reportExhaustion(lastErr)
	return zero, fmt.Errorf("%s: %w: %w", opts.Describe, ErrExhausted, lastErr)
}

// isAuth applies the configured classifier.
func (o *Options) isAuth(err error) bool {
	return o.IsAuthError != nil && o.IsAuthError(err)
}

// reportExhaustion surfaces the terminal notification and, for auth-class
// exhaustion, fires the terminal-failure hook.
func (o *Options) reportExhaustion(cause error) {
	authClass := o.isAuth(cause)

	if authClass && o.OnAuthExhausted != nil {
		o.OnAuthExhausted(fmt.Sprintf("%s failed: session could not be re-established (%v)", o.Describe, cause))
	}

	if !o.NotifyOnExhaustion || o.Notifier == nil {
		return
	}

	var msg string
	if authClass {
		msg = fmt.Sprintf("Your session has expired and %s could not complete. Please sign in again.", o.Describe)
	} else {
		msg = fmt.Sprintf("%s failed after repeated attempts: %v", o.Describe, cause)
	}

	if o.Gate != nil && o.Gate.ShouldSuppress(msg) {
		return
	}
	o.Notifier.Error(msg)
}

// runAttempt races the operation against the per-attempt timeout.
func runAttempt[T any](ctx context.Context, op Operation[T], timeout time.Duration) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		val, err := op(attemptCtx)
		ch <- result{val: val, err: err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-attemptCtx.Done():
		var zero T
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %v", ErrAttemptTimeout, timeout)
		}
		return zero, attemptCtx.Err()
	}
}
