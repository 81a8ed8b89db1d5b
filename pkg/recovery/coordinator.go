package recovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wakeguard/wakeguard-go/pkg/events"
	"github.com/wakeguard/wakeguard-go/pkg/loading"
	"github.com/wakeguard/wakeguard-go/pkg/log"
	"github.com/wakeguard/wakeguard-go/pkg/notify"
	"github.com/wakeguard/wakeguard-go/pkg/retry"
	"github.com/wakeguard/wakeguard-go/pkg/session"
	"github.com/wakeguard/wakeguard-go/pkg/suppress"
	"github.com/wakeguard/wakeguard-go/pkg/visibility"
)

// ErrNoSource indicates the coordinator was constructed without a
// visibility signal source.
var ErrNoSource = errors.New("no visibility source provided")

// stalePrompt is the persistent prompt surfaced when the application is
// marked stale. It carries a manual refresh action and bypasses the
// suppression gate.
const stalePrompt = "Data may be outdated after a long suspend. Refresh to reload the latest state."

// Deps holds the coordinator's injected collaborators. Source is
// required; the rest default to no-op implementations.
type Deps struct {
	// Source is the environment visibility signal.
	Source visibility.Source

	// Bus receives the recovery-outcome and session-failed signals.
	// Nil creates a private bus.
	Bus *events.Bus

	// Notifier is the user-facing notification sink.
	Notifier notify.Notifier

	// Logger receives diagnostic events.
	Logger log.Logger
}

// Coordinator owns the visibility state machine and drives the
// escalation policy on resume.
type Coordinator struct {
	cfg Config

	monitor  *visibility.Monitor
	loading  *loading.Registry
	gate     *suppress.Gate
	bus      *events.Bus
	notifier notify.Notifier
	logger   log.Logger

	// Exclusive-run guard for the recovery path. Try-acquire semantics:
	// a trigger that loses the swap is dropped, not queued.
	handling atomic.Bool

	mu             sync.Mutex
	client         session.Client
	store          *session.Store
	probes         []session.Probe
	stale          bool
	removeObserver func()
}

// NewCoordinator creates a coordinator with default configuration.
func NewCoordinator(deps Deps) (*Coordinator, error) {
	return NewCoordinatorWithConfig(Config{}, deps)
}

// NewCoordinatorWithConfig creates a coordinator with custom
// configuration. The coordinator observes visibility transitions
// immediately; consumers still need Attach to hold the upstream
// subscription open.
func NewCoordinatorWithConfig(cfg Config, deps Deps) (*Coordinator, error) {
	if deps.Source == nil {
		return nil, ErrNoSource
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coordinator config: %w", err)
	}
	cfg = cfg.withDefaults()

	if deps.Bus == nil {
		deps.Bus = events.NewBus()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = log.NoopLogger{}
	}

	c := &Coordinator{
		cfg:      cfg,
		monitor:  visibility.NewMonitor(deps.Source),
		gate:     suppress.NewGate(),
		bus:      deps.Bus,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}

	c.loading = loading.NewRegistryWithConfig(loading.Config{
		WatchdogTimeout: cfg.WatchdogTimeout,
		Guard:           c.handling.Load,
		OnWatchdog:      c.onWatchdog,
	})

	c.removeObserver = c.monitor.OnTransition(c.onTransition)

	return c, nil
}

// Attach registers a logical consumer on the shared visibility monitor.
// The returned handle must be released on consumer teardown.
func (c *Coordinator) Attach(consumerID string) *visibility.Subscription {
	return c.monitor.Attach(consumerID)
}

// Monitor returns the shared visibility monitor.
func (c *Coordinator) Monitor() *visibility.Monitor {
	return c.monitor
}

// Loading returns the loading-state registry.
func (c *Coordinator) Loading() *loading.Registry {
	return c.loading
}

// Gate returns the notification suppression gate. Application error
// paths should consult it before surfacing transient errors.
func (c *Coordinator) Gate() *suppress.Gate {
	return c.gate
}

// Bus returns the event bus carrying recovery signals.
func (c *Coordinator) Bus() *events.Bus {
	return c.bus
}

// RegisterSessionClient registers the session client and its
// verification probes. Replaces any previous registration.
func (c *Coordinator) RegisterSessionClient(client session.Client, probes ...session.Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = client
	c.probes = probes
}

// SetSnapshotStore registers the local session snapshot store used by the
// last-resort restore path. May be nil to disable it.
func (c *Coordinator) SetSnapshotStore(store *session.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
}

// RegisterLoadingState updates the busy flag for a loading indicator.
func (c *Coordinator) RegisterLoadingState(id string, busy bool) {
	c.loading.Set(id, busy)
}

// LoadingBusy returns the busy flag for a loading indicator.
func (c *Coordinator) LoadingBusy(id string) bool {
	return c.loading.Get(id)
}

// Stale reports whether the application has been marked stale by a long
// suspend. Cleared by a successful ForceRefresh.
func (c *Coordinator) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// Recovering reports whether a recovery run is currently in flight.
func (c *Coordinator) Recovering() bool {
	return c.handling.Load()
}

// ForceRefresh runs a manual recovery cycle. A no-op returning false if
// a run is already in flight. On success the stale flag is cleared.
func (c *Coordinator) ForceRefresh(ctx context.Context) bool {
	return c.runRecovery(ctx, events.RecoveryManual, 0)
}

// Close detaches the coordinator from the visibility monitor. Loading
// watchdogs keep running; release them via the registry if needed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	remove := c.removeObserver
	c.removeObserver = nil
	c.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// RetryOptions returns retry options prewired with the coordinator's
// suppression gate, notifier, auth classification and one-shot session
// refresh. Auth-class exhaustion publishes the session-failed signal.
func (c *Coordinator) RetryOptions(describe string) retry.Options {
	opts := retry.DefaultOptions()
	opts.Describe = describe
	opts.Gate = c.gate
	opts.Notifier = c.notifier
	opts.IsAuthError = session.IsAuthError
	opts.Refresh = func(ctx context.Context) error {
		c.mu.Lock()
		client := c.client
		c.mu.Unlock()

		if client == nil {
			return session.ErrNoClient
		}
		_, err := client.RefreshSession(ctx)
		return err
	}
	opts.OnAuthExhausted = func(reason string) {
		c.bus.PublishFailure(events.SessionFailed{
			RunID:    uuid.New(),
			Reason:   reason,
			Severity: events.SeverityCritical,
			Action:   events.ActionRefreshRequired,
		})
	}
	return opts
}

// onTransition applies the escalation policy when the host resumes.
func (c *Coordinator) onTransition(t visibility.Transition) {
	c.logger.Log(log.Event{
		Timestamp: t.At,
		Component: log.ComponentVisibility,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: t.From.String(),
			NewState: t.To.String(),
		},
	})

	if t.To != visibility.StateActive {
		return
	}

	hidden := c.monitor.HiddenFor(t.At)
	switch {
	case hidden < c.cfg.LogOnlyThreshold:
		return

	case hidden < c.cfg.ClearLoadingThreshold:
		c.logEscalation(hidden, "log-only")

	case hidden < c.cfg.FullRecoveryThreshold:
		c.logEscalation(hidden, "clear-loading")
		c.loading.ClearAll()

	default:
		c.logEscalation(hidden, "full-recovery")
		c.loading.ClearAll()
		c.markStale()
		go c.runRecovery(context.Background(), events.RecoveryAggressive, hidden)
	}
}

func (c *Coordinator) logEscalation(hidden time.Duration, tier string) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentCoordinator,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			NewState: visibility.StateActive.String(),
			Hidden:   hidden,
			Reason:   tier,
		},
	})
}

// markStale sets the stale flag and surfaces the persistent prompt. The
// prompt is an escalation notification and bypasses the gate.
func (c *Coordinator) markStale() {
	c.mu.Lock()
	already := c.stale
	c.stale = true
	c.mu.Unlock()

	if !already {
		c.notifier.Error(stalePrompt, "Refresh")
	}
}

// onWatchdog handles a loading watchdog force-clear.
func (c *Coordinator) onWatchdog(id string, busyFor time.Duration) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Component:  log.ComponentLoading,
		Category:   log.CategoryWatchdog,
		ConsumerID: id,
		Watchdog: &log.WatchdogEvent{
			ID:      id,
			BusyFor: busyFor,
		},
	})
}

// runRecovery executes one exclusive recovery run. Returns whether a
// usable session was recovered; false when the run was dropped because
// another is in flight.
func (c *Coordinator) runRecovery(ctx context.Context, typ events.RecoveryType, hidden time.Duration) bool {
	if !c.handling.CompareAndSwap(false, true) {
		return false
	}
	defer c.handling.Store(false)

	runID := uuid.New()

	c.mu.Lock()
	client := c.client
	store := c.store
	probes := c.probes
	c.mu.Unlock()

	if client == nil {
		c.logError(runID, "recovery run skipped", session.ErrNoClient)
		return false
	}

	// Blanket-suppress transient error noise for the configured window.
	// The window is fixed-length even if the run outlives it.
	c.gate.BeginWindow(c.cfg.SuppressionWindow)

	proc := session.NewProcedure(client, store, probes, session.ProcedureConfig{
		MaxAttempts:  c.cfg.MaxRecoveryAttempts,
		AttemptDelay: c.cfg.AttemptDelay,
		OnAttempt: func(a session.Attempt) {
			c.logger.Log(log.Event{
				Timestamp: time.Now(),
				Component: log.ComponentSession,
				Category:  log.CategoryRecovery,
				RunID:     runID.String(),
				Recovery: &log.RecoveryEvent{
					Type:      typ.String(),
					Attempt:   a.Number,
					Refreshed: a.RefreshSucceeded,
				},
			})
		},
	})

	outcome, err := proc.Recover(ctx)
	if err != nil {
		c.logError(runID, "recovery run aborted", err)
		return false
	}

	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentCoordinator,
		Category:  log.CategoryRecovery,
		RunID:     runID.String(),
		Recovery: &log.RecoveryEvent{
			Type:       typ.String(),
			Recovered:  outcome.Recovered,
			Refreshed:  outcome.SessionRefreshed,
			Restored:   outcome.RestoredFromStore,
			TimeHidden: hidden,
		},
	})

	if !outcome.Recovered {
		// Terminal: surfaced exactly once per run, never suppressed.
		reason := fmt.Sprintf("session recovery exhausted after %d refresh attempts and local restore", len(outcome.Attempts))
		c.bus.PublishFailure(events.SessionFailed{
			RunID:    runID,
			Reason:   reason,
			Severity: events.SeverityCritical,
			Action:   events.ActionRefreshRequired,
		})
		c.notifier.Error("Your session could not be restored. Please reload or sign in again.", "Reload")
		return false
	}

	if typ == events.RecoveryManual {
		c.mu.Lock()
		c.stale = false
		c.mu.Unlock()
	}

	c.bus.PublishOutcome(events.RecoveryOutcome{
		RunID:            runID,
		TimeHidden:       hidden,
		Timestamp:        time.Now(),
		SessionRefreshed: outcome.SessionRefreshed,
		Type:             typ,
	})
	return true
}

func (c *Coordinator) logError(runID uuid.UUID, context string, err error) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentCoordinator,
		Category:  log.CategoryError,
		RunID:     runID.String(),
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: context,
		},
	})
}
