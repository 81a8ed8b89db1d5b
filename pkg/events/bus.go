package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecoveryType distinguishes how a recovery run was triggered.
type RecoveryType uint8

const (
	// RecoveryAggressive is an automatic run triggered by a long hidden
	// interval.
	RecoveryAggressive RecoveryType = iota

	// RecoveryManual is a user-triggered run (forced refresh).
	RecoveryManual
)

// String returns the recovery type name.
func (r RecoveryType) String() string {
	switch r {
	case RecoveryAggressive:
		return "AGGRESSIVE"
	case RecoveryManual:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// Severity classifies a failure signal.
type Severity uint8

const (
	// SeverityCritical requires explicit user action.
	SeverityCritical Severity = iota
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Action names the user action a failure signal demands.
type Action uint8

const (
	// ActionRefreshRequired means the user must reload or re-authenticate.
	ActionRefreshRequired Action = iota
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionRefreshRequired:
		return "REFRESH_REQUIRED"
	default:
		return "UNKNOWN"
	}
}

// RecoveryOutcome is published when a recovery run completes successfully.
type RecoveryOutcome struct {
	// RunID identifies the recovery run.
	RunID uuid.UUID

	// TimeHidden is how long the host was suspended before the run.
	// Zero for manual runs not preceded by a suspend.
	TimeHidden time.Duration

	// Timestamp is when the run completed.
	Timestamp time.Time

	// SessionRefreshed indicates the session was actually refreshed
	// (as opposed to verified still valid).
	SessionRefreshed bool

	// Type is how the run was triggered.
	Type RecoveryType
}

// SessionFailed is published when a recovery run exhausts every local
// strategy. The application shell must treat it as requiring explicit
// user action.
type SessionFailed struct {
	// RunID identifies the recovery run.
	RunID uuid.UUID

	// Reason describes what failed.
	Reason string

	// Severity is always SeverityCritical for session failures.
	Severity Severity

	// Action is the user action required.
	Action Action
}

// Bus is a synchronous typed publish/subscribe hub for the two recovery
// signals.
type Bus struct {
	mu sync.Mutex

	outcomeSubs map[uint64]func(RecoveryOutcome)
	failureSubs map[uint64]func(SessionFailed)
	nextID      uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		outcomeSubs: make(map[uint64]func(RecoveryOutcome)),
		failureSubs: make(map[uint64]func(SessionFailed)),
	}
}

// SubscribeOutcome registers a subscriber for RecoveryOutcome signals.
// The returned function removes the subscription; it is idempotent.
func (b *Bus) SubscribeOutcome(fn func(RecoveryOutcome)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.outcomeSubs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.outcomeSubs, id)
			b.mu.Unlock()
		})
	}
}

// SubscribeFailure registers a subscriber for SessionFailed signals.
// The returned function removes the subscription; it is idempotent.
func (b *Bus) SubscribeFailure(fn func(SessionFailed)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.failureSubs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.failureSubs, id)
			b.mu.Unlock()
		})
	}
}

// PublishOutcome delivers the signal to all outcome subscribers on the
// calling goroutine, outside the bus lock.
func (b *Bus) PublishOutcome(o RecoveryOutcome) {
	for _, fn := range b.outcomeSnapshot() {
		fn(o)
	}
}

// PublishFailure delivers the signal to all failure subscribers on the
// calling goroutine, outside the bus lock.
func (b *Bus) PublishFailure(f SessionFailed) {
	for _, fn := range b.failureSnapshot() {
		fn(f)
	}
}

func (b *Bus) outcomeSnapshot() []func(RecoveryOutcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := sortedKeys(b.outcomeSubs)
	fns := make([]func(RecoveryOutcome), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.outcomeSubs[id])
	}
	return fns
}

func (b *Bus) failureSnapshot() []func(SessionFailed) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := sortedKeys(b.failureSubs)
	fns := make([]func(SessionFailed), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.failureSubs[id])
	}
	return fns
}

// sortedKeys returns map keys in ascending registration order.
func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
