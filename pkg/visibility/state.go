package visibility

import "time"

// State represents the host visibility state.
type State uint8

const (
	// StateActive indicates the host is in the foreground.
	StateActive State = iota

	// StateSuspended indicates the host is backgrounded.
	StateSuspended
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateSuspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// Transition records a visibility state change.
type Transition struct {
	// From is the previous state.
	From State

	// To is the new state.
	To State

	// At is when the transition occurred.
	At time.Time
}

// Source is the abstract environment visibility signal.
//
// Implementations bridge a concrete host mechanism (page visibility API,
// app lifecycle callbacks) to state change notifications. Subscribe
// registers a callback and returns a function that removes it; the
// returned function must be safe to call more than once.
type Source interface {
	Subscribe(fn func(State)) (unsubscribe func())
}
