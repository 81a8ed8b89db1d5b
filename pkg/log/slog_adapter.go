package log

import (
	"context"
	"log/slog"
)

// SlogAdapter bridges diagnostic events to a standard slog.Logger, for
// applications that want recovery events in their existing log stream.
// Events are logged at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter forwarding to the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log forwards the event to slog at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("component", event.Component.String()),
		slog.String("category", event.Category.String()),
	}

	if event.ConsumerID != "" {
		attrs = append(attrs, slog.String("consumer_id", event.ConsumerID))
	}
	if event.RunID != "" {
		attrs = append(attrs, slog.String("run_id", event.RunID))
	}

	if sc := event.StateChange; sc != nil {
		if sc.OldState != "" {
			attrs = append(attrs, slog.String("old_state", sc.OldState))
		}
		attrs = append(attrs, slog.String("new_state", sc.NewState))
		if sc.Hidden > 0 {
			attrs = append(attrs, slog.Duration("hidden", sc.Hidden))
		}
		if sc.Reason != "" {
			attrs = append(attrs, slog.String("reason", sc.Reason))
		}
	}

	if rec := event.Recovery; rec != nil {
		attrs = append(attrs, slog.String("type", rec.Type))
		if rec.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", rec.Attempt))
		}
		attrs = append(attrs,
			slog.Bool("recovered", rec.Recovered),
			slog.Bool("refreshed", rec.Refreshed),
			slog.Bool("restored", rec.Restored),
		)
		if rec.TimeHidden > 0 {
			attrs = append(attrs, slog.Duration("time_hidden", rec.TimeHidden))
		}
	}

	if wd := event.Watchdog; wd != nil {
		attrs = append(attrs,
			slog.String("id", wd.ID),
			slog.Duration("busy_for", wd.BusyFor),
		)
	}

	if sup := event.Suppression; sup != nil {
		attrs = append(attrs, slog.Bool("suppressed", sup.Suppressed))
		if sup.Opened {
			attrs = append(attrs,
				slog.Bool("opened", true),
				slog.Duration("window", sup.Window),
			)
		}
		if sup.Message != "" {
			attrs = append(attrs, slog.String("message", sup.Message))
		}
	}

	if e := event.Error; e != nil {
		attrs = append(attrs, slog.String("error", e.Message))
		if e.Context != "" {
			attrs = append(attrs, slog.String("error_context", e.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "wakeguard event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
