package retry

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Linear is a backoff.BackOff whose delays grow linearly:
// step, 2*step, 3*step, ...
type Linear struct {
	mu sync.Mutex

	step time.Duration
	n    int
}

// NewLinear creates a linear backoff with the given step.
// A non-positive step yields zero delays.
func NewLinear(step time.Duration) *Linear {
	if step < 0 {
		step = 0
	}
	return &Linear{step: step}
}

// NextBackOff returns the next delay and advances the sequence.
func (l *Linear) NextBackOff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.n++
	return time.Duration(l.n) * l.step
}

// Reset restarts the sequence.
func (l *Linear) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.n = 0
}

// Compile-time interface satisfaction check.
var _ backoff.BackOff = (*Linear)(nil)
