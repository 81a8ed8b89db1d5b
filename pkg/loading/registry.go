package loading

import (
	"sync"
	"time"
)

// DefaultWatchdogTimeout is the default bound on how long an entry may
// stay busy before being force-cleared.
const DefaultWatchdogTimeout = 20 * time.Second

// Entry describes the registered state of one operation ID.
type Entry struct {
	// ID is the operation identifier.
	ID string

	// Busy is the current flag value.
	Busy bool

	// RegisteredAt is when the entry last transitioned to busy.
	RegisteredAt time.Time
}

// entry is the internal registry record.
type entry struct {
	busy         bool
	registeredAt time.Time
	watchdog     *time.Timer
}

// Registry maps operation IDs to busy flags with per-ID watchdogs.
type Registry struct {
	mu sync.Mutex

	entries map[string]*entry

	// Watchdog bound applied to every busy entry
	timeout time.Duration

	// Optional: returns true while a recovery run is in flight,
	// making ClearAll a no-op.
	guard func() bool

	// Called when a watchdog force-clears a stuck entry.
	onWatchdog func(id string, busyFor time.Duration)
}

// Config holds registry configuration.
type Config struct {
	// WatchdogTimeout bounds how long an entry may stay busy.
	// Zero selects DefaultWatchdogTimeout.
	WatchdogTimeout time.Duration

	// Guard reports whether a recovery run is in flight.
	// ClearAll is a no-op while it returns true. May be nil.
	Guard func() bool

	// OnWatchdog is invoked (outside the registry lock) when a watchdog
	// force-clears an entry. May be nil.
	OnWatchdog func(id string, busyFor time.Duration)
}

// NewRegistry creates a registry with default configuration.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(Config{})
}

// NewRegistryWithConfig creates a registry with custom configuration.
func NewRegistryWithConfig(cfg Config) *Registry {
	if cfg.WatchdogTimeout <= 0 {
		cfg.WatchdogTimeout = DefaultWatchdogTimeout
	}
	return &Registry{
		entries:    make(map[string]*entry),
		timeout:    cfg.WatchdogTimeout,
		guard:      cfg.Guard,
		onWatchdog: cfg.OnWatchdog,
	}
}

// Set updates the busy flag for an ID. Setting busy (re)arms the
// watchdog; setting not-busy cancels it.
func (r *Registry) Set(id string, busy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[id]
	if !exists {
		e = &entry{}
		r.entries[id] = e
	}

	if e.watchdog != nil {
		e.watchdog.Stop()
		e.watchdog = nil
	}

	e.busy = busy
	if busy {
		e.registeredAt = time.Now()
		e.watchdog = time.AfterFunc(r.timeout, func() {
			r.expireWatchdog(id)
		})
	}
}

// Get returns the busy flag for an ID. Unknown IDs are not busy.
func (r *Registry) Get(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.entries[id]; exists {
		return e.busy
	}
	return false
}

// BusyIDs returns the IDs currently marked busy.
func (r *Registry) BusyIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, e := range r.entries {
		if e.busy {
			ids = append(ids, id)
		}
	}
	return ids
}

// ClearAll force-clears every busy entry and cancels its watchdog.
// No-op while the guard reports a recovery run in flight. Returns the
// number of entries cleared.
func (r *Registry) ClearAll() int {
	if r.guard != nil && r.guard() {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := 0
	for _, e := range r.entries {
		if !e.busy {
			continue
		}
		e.busy = false
		if e.watchdog != nil {
			e.watchdog.Stop()
			e.watchdog = nil
		}
		cleared++
	}
	return cleared
}

// Unregister removes an ID entirely, cancelling any pending watchdog.
// Safe to call for unknown IDs.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.entries[id]; exists {
		if e.watchdog != nil {
			e.watchdog.Stop()
			e.watchdog = nil
		}
		delete(r.entries, id)
	}
}

// Count returns the number of registered entries.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns a copy of all registered entries.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Entry, 0, len(r.entries))
	for id, e := range r.entries {
		result = append(result, Entry{
			ID:           id,
			Busy:         e.busy,
			RegisteredAt: e.registeredAt,
		})
	}
	return result
}

// expireWatchdog force-clears a stuck entry.
func (r *Registry) expireWatchdog(id string) {
	r.mu.Lock()

	e, exists := r.entries[id]
	if !exists || !e.busy {
		r.mu.Unlock()
		return
	}

	e.busy = false
	e.watchdog = nil
	busyFor := time.Since(e.registeredAt)
	callback := r.onWatchdog

	r.mu.Unlock()

	// Call callback outside lock
	if callback != nil {
		callback(id, busyFor)
	}
}
