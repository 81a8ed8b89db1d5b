package session

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Recovery defaults.
const (
	// DefaultMaxAttempts is the default number of refresh attempts.
	DefaultMaxAttempts = 3

	// DefaultAttemptDelay is the default fixed delay between attempts.
	DefaultAttemptDelay = 1 * time.Second
)

// ErrNoClient indicates no session client has been registered.
var ErrNoClient = errors.New("no session client registered")

// Probe is a lightweight read-only verification call run after a
// successful refresh to confirm the session actually works.
type Probe struct {
	// Name identifies the probe in diagnostics.
	Name string

	// Run performs the verification call.
	Run func(ctx context.Context) error
}

// Attempt records one refresh attempt.
type Attempt struct {
	// Number is the 1-based attempt index.
	Number int

	// RefreshSucceeded indicates the refresh call itself succeeded.
	RefreshSucceeded bool

	// VerificationResults holds the per-probe outcomes, in probe order.
	// Empty when the refresh failed before probes ran.
	VerificationResults []bool
}

// Outcome summarizes a recovery run.
type Outcome struct {
	// Recovered indicates a usable session was obtained.
	Recovered bool

	// SessionRefreshed indicates the session came from a server refresh
	// (false when it was restored from the local snapshot).
	SessionRefreshed bool

	// RestoredFromStore indicates the last-resort local restore supplied
	// the session.
	RestoredFromStore bool

	// Attempts holds the per-attempt records.
	Attempts []Attempt
}

// ProcedureConfig holds recovery procedure configuration.
type ProcedureConfig struct {
	// MaxAttempts bounds the refresh attempts. Zero selects the default.
	MaxAttempts int

	// AttemptDelay is the fixed delay between failed attempts.
	// Zero selects the default.
	AttemptDelay time.Duration

	// OnAttempt is invoked after each attempt completes. May be nil.
	OnAttempt func(Attempt)
}

// Procedure performs bounded multi-attempt session recovery.
type Procedure struct {
	client Client
	store  *Store
	probes []Probe

	maxAttempts int
	delay       time.Duration
	onAttempt   func(Attempt)
}

// NewProcedure creates a recovery procedure for the given client.
// The store may be nil, in which case the last-resort restore is skipped.
func NewProcedure(client Client, store *Store, probes []Probe, cfg ProcedureConfig) *Procedure {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AttemptDelay <= 0 {
		cfg.AttemptDelay = DefaultAttemptDelay
	}
	return &Procedure{
		client:      client,
		store:       store,
		probes:      probes,
		maxAttempts: cfg.MaxAttempts,
		delay:       cfg.AttemptDelay,
		onAttempt:   cfg.OnAttempt,
	}
}

// Recover runs the recovery procedure. The returned outcome reports
// whether a usable session was obtained; err is non-nil only when the
// context was cancelled mid-run.
//
// Callers must serialize Recover invocations; the coordinator's
// exclusive-run guard provides that.
func (p *Procedure) Recover(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{}

	if p.client == nil {
		return outcome, ErrNoClient
	}

	// Fixed inter-attempt delay; the policy object mirrors the retry
	// wrapper's use of the backoff interface.
	delays := backoff.NewConstantBackOff(p.delay)
	delays.Reset()

	for n := 1; n <= p.maxAttempts; n++ {
		attempt := p.runAttempt(ctx, n)
		outcome.Attempts = append(outcome.Attempts, attempt)
		if p.onAttempt != nil {
			p.onAttempt(attempt)
		}

		if attempt.verified() {
			outcome.Recovered = true
			outcome.SessionRefreshed = true
			return outcome, nil
		}

		if n < p.maxAttempts {
			select {
			case <-time.After(delays.NextBackOff()):
			case <-ctx.Done():
				return outcome, ctx.Err()
			}
		}
	}

	// Last resort: drop local state without invalidating the session
	// server-side, then restore from the persisted snapshot.
	if p.restoreFromStore(ctx) {
		outcome.Recovered = true
		outcome.RestoredFromStore = true
		return outcome, nil
	}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// runAttempt performs one refresh-then-verify attempt.
func (p *Procedure) runAttempt(ctx context.Context, number int) Attempt {
	attempt := Attempt{Number: number}

	sess, err := p.client.RefreshSession(ctx)
	if err != nil || !sess.Valid(time.Now()) {
		return attempt
	}
	attempt.RefreshSucceeded = true

	for _, probe := range p.probes {
		ok := runProbe(ctx, probe)
		attempt.VerificationResults = append(attempt.VerificationResults, ok)
		if !ok {
			// A failed probe fails the whole attempt; remaining
			// probes are skipped.
			return attempt
		}
	}
	return attempt
}

// verified reports whether the attempt produced a fully verified session.
func (a Attempt) verified() bool {
	if !a.RefreshSucceeded {
		return false
	}
	for _, ok := range a.VerificationResults {
		if !ok {
			return false
		}
	}
	return true
}

// runProbe executes a probe, converting a panic into failure.
func runProbe(ctx context.Context, probe Probe) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return probe.Run(ctx) == nil
}

// restoreFromStore performs the local sign-out plus snapshot restore.
func (p *Procedure) restoreFromStore(ctx context.Context) bool {
	if p.store == nil {
		return false
	}

	if err := p.client.SignOut(ctx, true); err != nil {
		return false
	}

	sess, err := p.store.Load()
	if err != nil || sess == nil {
		return false
	}
	return sess.Valid(time.Now())
}
