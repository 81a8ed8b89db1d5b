package log

// Logger is the interface components use to emit diagnostic events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent
	// use and should process or queue quickly; blocking affects the
	// recovery paths that emit events.
	Log(event Event)
}

// NoopLogger discards all events. Safe for concurrent use and usable as a
// zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
