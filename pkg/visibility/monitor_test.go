package visibility

import (
	"sync"
	"testing"
	"time"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateActive, "ACTIVE"},
		{StateSuspended, "SUSPENDED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestMonitorInitialState(t *testing.T) {
	m := NewMonitor(NewSimulatedSource())

	if m.State() != StateActive {
		t.Errorf("State() = %v, want StateActive", m.State())
	}
	if m.RefCount() != 0 {
		t.Errorf("RefCount() = %d, want 0", m.RefCount())
	}
	if !m.LastSuspendedAt().IsZero() {
		t.Error("LastSuspendedAt() should be zero before any suspend")
	}
	if m.HiddenFor(time.Now()) != 0 {
		t.Error("HiddenFor() should be 0 before any suspend")
	}
}

func TestMonitorReferenceCounting(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)

	// N attaches create exactly one upstream subscription
	subs := make([]*Subscription, 5)
	for i := range subs {
		subs[i] = m.Attach("consumer")
	}

	if src.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1 after 5 attaches", src.SubscriberCount())
	}
	if m.RefCount() != 5 {
		t.Errorf("RefCount() = %d, want 5", m.RefCount())
	}

	// Releasing all but one keeps the subscription
	for _, s := range subs[:4] {
		s.Release()
	}
	if src.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1 with one attachment left", src.SubscriberCount())
	}

	// Last release removes it
	subs[4].Release()
	if src.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0 after last release", src.SubscriberCount())
	}
	if m.RefCount() != 0 {
		t.Errorf("RefCount() = %d, want 0", m.RefCount())
	}
}

func TestMonitorReleaseIdempotent(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)

	a := m.Attach("a")
	b := m.Attach("b")

	// Double release of the same handle must not steal b's reference
	a.Release()
	a.Release()
	a.Release()

	if m.RefCount() != 1 {
		t.Fatalf("RefCount() = %d, want 1", m.RefCount())
	}
	if src.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", src.SubscriberCount())
	}

	b.Release()
	if src.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", src.SubscriberCount())
	}
}

func TestMonitorSuspendResume(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)
	sub := m.Attach("test")
	defer sub.Release()

	var mu sync.Mutex
	var transitions []Transition
	m.OnTransition(func(tr Transition) {
		mu.Lock()
		transitions = append(transitions, tr)
		mu.Unlock()
	})

	before := time.Now()
	src.Set(StateSuspended)

	if m.State() != StateSuspended {
		t.Fatalf("State() = %v, want StateSuspended", m.State())
	}
	suspendedAt := m.LastSuspendedAt()
	if suspendedAt.Before(before) {
		t.Error("LastSuspendedAt() earlier than the suspend call")
	}

	src.Set(StateActive)
	if m.State() != StateActive {
		t.Fatalf("State() = %v, want StateActive", m.State())
	}

	// Suspend timestamp survives the resume; HiddenFor derives from it
	if !m.LastSuspendedAt().Equal(suspendedAt) {
		t.Error("LastSuspendedAt() changed on resume")
	}
	hidden := m.HiddenFor(suspendedAt.Add(42 * time.Second))
	if hidden != 42*time.Second {
		t.Errorf("HiddenFor() = %v, want 42s", hidden)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 2 {
		t.Fatalf("got %d transitions, want 2", len(transitions))
	}
	if transitions[0].From != StateActive || transitions[0].To != StateSuspended {
		t.Errorf("first transition = %v->%v", transitions[0].From, transitions[0].To)
	}
	if transitions[1].From != StateSuspended || transitions[1].To != StateActive {
		t.Errorf("second transition = %v->%v", transitions[1].From, transitions[1].To)
	}
}

func TestMonitorRedundantStateDropped(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)
	sub := m.Attach("test")
	defer sub.Release()

	var count int
	var mu sync.Mutex
	m.OnTransition(func(Transition) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	src.Set(StateActive) // already active
	src.Set(StateSuspended)
	src.Set(StateSuspended) // duplicate

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("observer called %d times, want 1", count)
	}
}

func TestMonitorObserverRemoval(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)
	sub := m.Attach("test")
	defer sub.Release()

	var called bool
	remove := m.OnTransition(func(Transition) { called = true })
	remove()
	remove() // idempotent

	src.Set(StateSuspended)
	if called {
		t.Error("removed observer was called")
	}
}

func TestMonitorOnlyLastSuspendMatters(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)
	sub := m.Attach("test")
	defer sub.Release()

	src.Set(StateSuspended)
	first := m.LastSuspendedAt()

	src.Set(StateActive)
	time.Sleep(5 * time.Millisecond)
	src.Set(StateSuspended)

	second := m.LastSuspendedAt()
	if !second.After(first) {
		t.Error("second suspend did not overwrite the first timestamp")
	}
}

func TestMonitorHiddenForClampsNegative(t *testing.T) {
	src := NewSimulatedSource()
	m := NewMonitor(src)
	sub := m.Attach("test")
	defer sub.Release()

	src.Set(StateSuspended)
	past := m.LastSuspendedAt().Add(-time.Minute)
	if got := m.HiddenFor(past); got != 0 {
		t.Errorf("HiddenFor(past) = %v, want 0", got)
	}
}
