// Package visibility tracks the host's foreground/background state.
//
// The host environment (a browser tab, a mobile app runtime, a desktop
// shell) emits Active/Suspended transitions through a Source. The Monitor
// subscribes to the Source exactly once regardless of how many logical
// consumers attach, fans transitions out to registered observers, and
// remembers when the host was last suspended so that resume handlers can
// compute how long the host was hidden.
//
// # Reference Counting
//
// Attaching is reference counted:
//
//  1. First Attach subscribes to the Source
//  2. Further Attaches only increment the count
//  3. Release decrements; the last Release unsubscribes
//  4. Release is idempotent per handle
//
// This guarantees at most one environment-level subscription exists no
// matter how many independent consumers come and go.
//
// # Hidden Interval
//
// Only the last transition into Suspended matters. On resume, HiddenFor
// returns now minus that timestamp; intermediate suspend/resume pairs are
// not retained. Callers compute the interval once per resume and discard it.
//
// # Ordering
//
// The Monitor records the suspend timestamp before notifying observers of
// the transition, so a resume observer always sees the suspend timestamp
// that preceded it (monotonic clock assumption).
package visibility
