package log

import "time"

// Event is a diagnostic record emitted by the recovery core.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Component that emitted the event.
	Component Component `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// ConsumerID identifies the logical consumer involved, if any.
	ConsumerID string `cbor:"4,keyasint,omitempty"`

	// RunID identifies the recovery run involved, if any (UUID).
	RunID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"6,keyasint,omitempty"`
	Recovery    *RecoveryEvent    `cbor:"7,keyasint,omitempty"`
	Watchdog    *WatchdogEvent    `cbor:"8,keyasint,omitempty"`
	Suppression *SuppressionEvent `cbor:"9,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"`
}

// Component identifies the emitting subsystem.
type Component uint8

const (
	// ComponentCoordinator is the recovery coordinator.
	ComponentCoordinator Component = 0
	// ComponentVisibility is the visibility monitor.
	ComponentVisibility Component = 1
	// ComponentLoading is the loading-state registry.
	ComponentLoading Component = 2
	// ComponentSession is the session recovery procedure.
	ComponentSession Component = 3
	// ComponentSuppression is the notification suppression gate.
	ComponentSuppression Component = 4
	// ComponentTimer is a pausable timer.
	ComponentTimer Component = 5
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentCoordinator:
		return "COORDINATOR"
	case ComponentVisibility:
		return "VISIBILITY"
	case ComponentLoading:
		return "LOADING"
	case ComponentSession:
		return "SESSION"
	case ComponentSuppression:
		return "SUPPRESSION"
	case ComponentTimer:
		return "TIMER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a visibility or coordinator state change.
	CategoryState Category = 0
	// CategoryRecovery indicates recovery run progress.
	CategoryRecovery Category = 1
	// CategoryWatchdog indicates a loading watchdog firing.
	CategoryWatchdog Category = 2
	// CategorySuppression indicates a suppression decision.
	CategorySuppression Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryRecovery:
		return "RECOVERY"
	case CategoryWatchdog:
		return "WATCHDOG"
	case CategorySuppression:
		return "SUPPRESSION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a visibility or coordinator state change.
type StateChangeEvent struct {
	// OldState is the previous state name.
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state name.
	NewState string `cbor:"2,keyasint"`

	// Hidden is the hidden interval computed on resume, if applicable.
	// Stored as nanoseconds.
	Hidden time.Duration `cbor:"3,keyasint,omitempty"`

	// Reason for the change (escalation tier, manual trigger).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// RecoveryEvent captures recovery run progress.
type RecoveryEvent struct {
	// Type is the recovery trigger ("aggressive" or "manual").
	Type string `cbor:"1,keyasint"`

	// Attempt is the 1-based attempt number (0 for run-level events).
	Attempt int `cbor:"2,keyasint,omitempty"`

	// Recovered indicates the run finished with a usable session.
	Recovered bool `cbor:"3,keyasint,omitempty"`

	// Refreshed indicates the session came from a server refresh.
	Refreshed bool `cbor:"4,keyasint,omitempty"`

	// Restored indicates the last-resort local restore was used.
	Restored bool `cbor:"5,keyasint,omitempty"`

	// TimeHidden is the hidden interval that triggered the run.
	// Stored as nanoseconds.
	TimeHidden time.Duration `cbor:"6,keyasint,omitempty"`
}

// WatchdogEvent captures a loading watchdog force-clear.
type WatchdogEvent struct {
	// ID is the stuck operation identifier.
	ID string `cbor:"1,keyasint"`

	// BusyFor is how long the entry had been busy.
	// Stored as nanoseconds.
	BusyFor time.Duration `cbor:"2,keyasint"`
}

// SuppressionEvent captures a suppression window change or decision.
type SuppressionEvent struct {
	// Opened indicates a window was opened (false = closed/decision).
	Opened bool `cbor:"1,keyasint,omitempty"`

	// Window is the window length for open events.
	// Stored as nanoseconds.
	Window time.Duration `cbor:"2,keyasint,omitempty"`

	// Suppressed indicates a notification was withheld.
	Suppressed bool `cbor:"3,keyasint,omitempty"`

	// Message is the (possibly truncated) notification text involved.
	Message string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors from any component.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
