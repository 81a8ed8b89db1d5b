package suppress

import (
	"sync"
	"time"
)

// DefaultWindow is the default suppression window length.
const DefaultWindow = 5 * time.Second

// Filter inspects a candidate notification message.
// Returning false suppresses the message.
type Filter func(message string) bool

// Gate decides whether outbound notifications should be withheld.
type Gate struct {
	mu sync.Mutex

	// Blanket window expiry; zero when no window is open.
	windowExpiry time.Time

	// Registered filters in registration order
	filters []registeredFilter
	nextID  uint64
}

// registeredFilter pairs a filter with a removal handle.
type registeredFilter struct {
	id uint64
	fn Filter
}

// FilterHandle identifies a registered filter for removal.
type FilterHandle struct {
	id uint64
}

// NewGate creates a gate with no open window and no filters.
func NewGate() *Gate {
	return &Gate{}
}

// BeginWindow opens (or extends) the blanket suppression window.
// A non-positive duration selects DefaultWindow. Reopening while a window
// is active resets the expiry; windows never stack.
func (g *Gate) BeginWindow(d time.Duration) {
	if d <= 0 {
		d = DefaultWindow
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.windowExpiry = time.Now().Add(d)
}

// EndWindow closes the suppression window immediately.
func (g *Gate) EndWindow() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.windowExpiry = time.Time{}
}

// WindowActive reports whether the blanket window is currently open.
func (g *Gate) WindowActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.windowActiveLocked(time.Now())
}

func (g *Gate) windowActiveLocked(now time.Time) bool {
	return !g.windowExpiry.IsZero() && now.Before(g.windowExpiry)
}

// RegisterFilter appends a filter to the chain and returns a handle for
// removal.
func (g *Gate) RegisterFilter(fn Filter) FilterHandle {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	g.filters = append(g.filters, registeredFilter{id: id, fn: fn})
	return FilterHandle{id: id}
}

// RemoveFilter removes a previously registered filter.
// Removing an unknown or already-removed handle is a no-op.
func (g *Gate) RemoveFilter(h FilterHandle) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, rf := range g.filters {
		if rf.id == h.id {
			g.filters = append(g.filters[:i], g.filters[i+1:]...)
			return
		}
	}
}

// FilterCount returns the number of registered filters.
func (g *Gate) FilterCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.filters)
}

// ShouldSuppress reports whether the message must be withheld.
//
// The blanket window suppresses everything while open. Otherwise filters
// run in registration order: the first filter returning false suppresses
// (short-circuit). A panicking filter counts as allowing the message.
func (g *Gate) ShouldSuppress(message string) bool {
	g.mu.Lock()
	if g.windowActiveLocked(time.Now()) {
		g.mu.Unlock()
		return true
	}
	filters := make([]Filter, len(g.filters))
	for i, rf := range g.filters {
		filters[i] = rf.fn
	}
	g.mu.Unlock()

	for _, fn := range filters {
		if !runFilter(fn, message) {
			return true
		}
	}
	return false
}

// runFilter evaluates one filter, converting a panic into "allow".
func runFilter(fn Filter, message string) (allow bool) {
	defer func() {
		if recover() != nil {
			allow = true
		}
	}()
	return fn(message)
}
