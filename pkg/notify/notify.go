// Package notify defines the outbound user-notification sink contract.
//
// The recovery core never renders anything itself; it hands messages to a
// Notifier supplied by the host application. Error notifications from
// automated paths are expected to be routed through the suppression gate
// before reaching the sink.
package notify

// Notifier accepts user-facing notifications.
type Notifier interface {
	// Error surfaces an error notification. Actions name optional
	// user affordances (e.g. "Reload") the host may render.
	Error(message string, actions ...string)

	// Info surfaces an informational notification.
	Info(message string)
}

// Noop discards all notifications. Usable as a zero value.
type Noop struct{}

// Error discards the notification.
func (Noop) Error(string, ...string) {}

// Info discards the notification.
func (Noop) Info(string) {}

// Funcs adapts plain functions to the Notifier interface.
// Nil fields are treated as no-ops.
type Funcs struct {
	ErrorFn func(message string, actions ...string)
	InfoFn  func(message string)
}

// Error invokes ErrorFn if set.
func (f Funcs) Error(message string, actions ...string) {
	if f.ErrorFn != nil {
		f.ErrorFn(message, actions...)
	}
}

// Info invokes InfoFn if set.
func (f Funcs) Info(message string) {
	if f.InfoFn != nil {
		f.InfoFn(message)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Notifier = Noop{}
	_ Notifier = Funcs{}
)
