// Package log provides structured diagnostic event logging for the
// recovery core.
//
// Components emit typed Events (visibility state changes, recovery run
// progress, watchdog firings, suppression decisions, errors) to a Logger.
// Logging is always optional: components default to NoopLogger and never
// fail because of a logging problem.
//
// # Sinks
//
//   - FileLogger appends CBOR-encoded events to a file for later replay
//   - SlogAdapter bridges events to a log/slog logger for console output
//   - MultiLogger fans out to several sinks at once
//   - Reader streams a recorded file back, optionally filtered
//
// # Encoding
//
// Events are encoded as CBOR with integer keys (compact, deterministic,
// nanosecond timestamps). The same codec is used by FileLogger and Reader,
// so a recorded session can be replayed through the simulator.
package log
