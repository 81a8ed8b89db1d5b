// Package events defines the typed signals the recovery coordinator emits
// toward the application shell.
//
// Two signals exist, with fixed payload contracts:
//
//   - RecoveryOutcome: a recovery run finished successfully. Carries how
//     long the host was hidden, whether the session was actually
//     refreshed, and whether the run was triggered automatically
//     (aggressive) or by the user (manual).
//   - SessionFailed: a recovery run exhausted every local strategy. Always
//     severity-critical; the shell must surface a persistent prompt
//     requiring explicit user action. Published exactly once per run and
//     never suppressed.
//
// The Bus is a small synchronous in-process fan-out: subscribers run on
// the publisher's goroutine, outside the bus lock, in registration order.
// Unsubscribe functions are idempotent.
package events
