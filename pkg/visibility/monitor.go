package visibility

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Monitor fans out visibility transitions from a single Source subscription
// to any number of observers, and tracks the suspend timestamp needed to
// compute hidden intervals on resume.
type Monitor struct {
	mu sync.Mutex

	source Source

	// Reference counting for the upstream subscription
	refCount    int
	unsubscribe func()

	// Current state and suspend bookkeeping
	state           State
	lastSuspendedAt time.Time

	// Registered observers by ID
	observers map[uint64]func(Transition)
	nextObsID uint64
}

// Subscription is a handle returned by Attach.
// Release is idempotent; only the first call decrements the count.
type Subscription struct {
	// ID uniquely identifies this attachment for diagnostics.
	ID string

	// ConsumerID is the caller-supplied consumer name.
	ConsumerID string

	monitor  *Monitor
	released bool
	mu       sync.Mutex
}

// NewMonitor creates a Monitor reading from the given source.
// The initial state is Active; no upstream subscription exists until the
// first Attach.
func NewMonitor(source Source) *Monitor {
	return &Monitor{
		source:    source,
		state:     StateActive,
		observers: make(map[uint64]func(Transition)),
	}
}

// Attach registers a logical consumer. The first attachment subscribes to
// the underlying Source; later attachments only increment the reference
// count. Safe to call redundantly from many independent callers.
func (m *Monitor) Attach(consumerID string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refCount++
	if m.refCount == 1 {
		m.unsubscribe = m.source.Subscribe(m.onStateChange)
	}

	return &Subscription{
		ID:         uuid.New().String(),
		ConsumerID: consumerID,
		monitor:    m,
	}
}

// Release detaches the consumer. When the reference count reaches zero the
// upstream Source subscription is removed. Calling Release more than once
// on the same handle is a no-op.
func (s *Subscription) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	s.monitor.release()
}

func (m *Monitor) release() {
	m.mu.Lock()

	if m.refCount == 0 {
		m.mu.Unlock()
		return
	}

	m.refCount--
	var unsub func()
	if m.refCount == 0 {
		unsub = m.unsubscribe
		m.unsubscribe = nil
	}
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// RefCount returns the number of active attachments.
func (m *Monitor) RefCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refCount
}

// State returns the current visibility state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastSuspendedAt returns when the host last transitioned into Suspended.
// Zero if the host has never been suspended.
func (m *Monitor) LastSuspendedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSuspendedAt
}

// HiddenFor returns how long the host had been suspended as of now.
// Returns 0 if the host was never suspended.
func (m *Monitor) HiddenFor(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastSuspendedAt.IsZero() {
		return 0
	}
	d := now.Sub(m.lastSuspendedAt)
	if d < 0 {
		return 0
	}
	return d
}

// BackdateSuspend shifts the recorded suspend timestamp into the past.
// Intended for simulators and tests that cannot wait out real hidden
// intervals. A no-op if the host was never suspended.
func (m *Monitor) BackdateSuspend(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastSuspendedAt.IsZero() {
		m.lastSuspendedAt = m.lastSuspendedAt.Add(-d)
	}
}

// OnTransition registers an observer callback. Observers are invoked
// outside the monitor lock, in registration order. The returned function
// removes the observer and is safe to call more than once.
func (m *Monitor) OnTransition(fn func(Transition)) (remove func()) {
	m.mu.Lock()
	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

// onStateChange handles a raw state notification from the Source.
// Redundant notifications (same state) are dropped.
func (m *Monitor) onStateChange(newState State) {
	now := time.Now()

	m.mu.Lock()
	if newState == m.state {
		m.mu.Unlock()
		return
	}

	old := m.state
	m.state = newState

	// Record the suspend timestamp before anyone observes the transition.
	if newState == StateSuspended {
		m.lastSuspendedAt = now
	}

	observers := make([]func(Transition), 0, len(m.observers))
	ids := make([]uint64, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	// Stable order: ascending registration ID
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	for _, id := range ids {
		observers = append(observers, m.observers[id])
	}
	m.mu.Unlock()

	t := Transition{From: old, To: newState, At: now}
	for _, fn := range observers {
		fn(t)
	}
}
