/*
Package recovery implements the visibility-aware recovery coordinator.

The Coordinator owns the shared visibility monitor, the loading-state
registry and the notification suppression gate, and drives the escalation
policy when the host resumes after a suspend:

  - short hidden intervals are ignored
  - moderate intervals are logged without touching loading state
  - longer intervals force-clear stuck loading indicators
  - very long intervals mark the application stale and trigger a full
    bounded-retry session recovery run

# Exclusive runs

At most one recovery run executes at a time. A concurrent trigger while a
run is in flight is dropped, not queued. ForceRefresh is the manual
equivalent of the automatic run and obeys the same guard.

# Events

A completed run publishes exactly one signal on the event bus: a
RecoveryOutcome on success, or a SessionFailed when every local strategy
is exhausted. The failure signal is never suppressed.

# Configuration

All thresholds and bounds are configuration with sensible defaults; see
Config and LoadConfig for the YAML file format.
*/
package recovery
