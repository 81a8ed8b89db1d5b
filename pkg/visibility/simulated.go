package visibility

import "sync"

// SimulatedSource is a manually driven Source for tests and simulators.
// Call Set to emit a state change to all current subscribers.
type SimulatedSource struct {
	mu          sync.Mutex
	subscribers map[uint64]func(State)
	nextID      uint64
}

// NewSimulatedSource creates an empty simulated source.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{
		subscribers: make(map[uint64]func(State)),
	}
}

// Subscribe registers a callback for state changes.
func (s *SimulatedSource) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Set emits a state change to all subscribers.
func (s *SimulatedSource) Set(state State) {
	s.mu.Lock()
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// SubscriberCount returns the number of active subscriptions.
// Useful for verifying reference counting behavior.
func (s *SimulatedSource) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
