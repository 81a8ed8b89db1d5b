// Package suppress filters outbound error notifications.
//
// During automated recovery, transient network errors are expected and
// reporting each one would bury the user in noise. The Gate decides
// whether a candidate notification should be withheld, via two
// independent mechanisms:
//
// # Suppression Window
//
// BeginWindow opens a time-bounded blanket window during which generic
// notifications are suppressed regardless of filters. At most one window
// is open at a time; reopening resets the expiry rather than stacking.
// The window length is fixed at open time even if the recovery that
// opened it runs longer. That asymmetry is inherited behavior worth
// revisiting; see the coordinator's recovery path before changing it.
//
// # Filter Chain
//
// Filters are evaluated in registration order against the candidate
// message. The first filter that returns false suppresses the message
// (first-reject-wins, short-circuit). A filter that panics is treated as
// if it returned true: a malfunctioning filter can never suppress a
// notification (fail open).
//
// Terminal failure notifications must never be routed through the gate;
// suppression applies to in-progress noise only.
package suppress
