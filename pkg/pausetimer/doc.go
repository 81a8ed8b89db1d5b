// Package pausetimer provides timers whose duration only elapses while the
// host is visible.
//
// A regular timer keeps counting while the host is suspended, so a 30
// second timer started just before the host is backgrounded for an hour
// fires the moment it resumes, long after the work it guarded has become
// irrelevant. A pausable timer instead accumulates only Active time:
//
//   - While Active, an underlying timer counts down the remaining duration
//   - On suspend, the elapsed Active time is folded in and the underlying
//     timer is cancelled
//   - On resume, the timer is rescheduled for the exact remainder
//
// The callback fires exactly once, never before the cumulative Active time
// reaches the requested duration. If the remainder is already zero or
// negative at (re)schedule time, the callback fires immediately instead of
// being scheduled with a non-positive delay.
//
// Timer instances are fully independent; they share nothing beyond the
// visibility monitor they observe. Clear is idempotent and detaches the
// timer's visibility observer, so a cleared timer leaves no dangling
// subscription behind.
package pausetimer
