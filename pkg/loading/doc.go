// Package loading tracks busy flags for in-flight operations.
//
// Each operation registers under a caller-chosen ID. Setting an ID busy
// arms a watchdog timer; if the operation does not report completion
// within the watchdog bound, the flag is forcibly cleared and a warning is
// emitted identifying the stuck ID. This keeps loading indicators from
// spinning forever when a completion callback is lost.
//
// # Watchdog Behavior
//
//   - Set(id, true) arms (or re-arms) the watchdog for that ID
//   - Set(id, false) clears the flag and cancels the watchdog
//   - A fired watchdog leaves the entry not-busy until explicitly re-set
//   - Watchdogs are independent per ID; clearing one never affects another
//
// # Recovery Interaction
//
// ClearAll force-clears every busy entry. It consults an optional guard
// before acting and becomes a no-op while a recovery run is in flight, so
// bulk clearing cannot race a recovery procedure that depends on loading
// state mid-flight.
//
// Unregister removes an ID entirely on consumer teardown: the flag is
// dropped and any pending watchdog is cancelled, leaving no dangling timer.
package loading
