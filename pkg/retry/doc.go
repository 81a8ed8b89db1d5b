// Package retry wraps asynchronous operations with bounded retries,
// per-attempt timeouts, and a one-shot session-refresh path for
// authentication failures.
//
// # Attempt Loop
//
// Each attempt races the operation against a per-attempt timeout. On
// success the value is returned immediately. On failure:
//
//   - Authentication-classified errors trigger exactly one session
//     refresh per call, and the retry following that refresh does not
//     consume an attempt slot. An operation whose every failure is
//     auth-classified therefore runs at most MaxRetries+1 times.
//   - All other failures wait a linearly increasing delay
//     (RetryDelay x attempt number) before the next attempt.
//
// # Exhaustion
//
// After all attempts fail the zero value is returned with ErrExhausted
// wrapping the last cause. If notification is enabled and the suppression
// gate is not currently suppressing, a descriptive error notification is
// surfaced, with distinct wording for auth-class exhaustion; auth-class
// exhaustion additionally fires the injected terminal-failure hook so the
// coordinator can publish its session-failed signal.
//
// The delay policy implements the backoff.BackOff interface so it can be
// swapped for the library's stock policies where linear growth is not
// wanted.
package retry
