package pausetimer

import (
	"sync"
	"time"

	"github.com/wakeguard/wakeguard-go/pkg/visibility"
)

// Timer is a single-shot timer that only counts down while the host
// visibility state is Active.
type Timer struct {
	mu sync.Mutex

	duration time.Duration
	callback func()

	// Active time accumulated across suspend cycles.
	// Never exceeds duration.
	elapsedWhileActive time.Duration

	// When the current Active counting period began.
	// Zero while suspended or inert.
	activeSince time.Time

	// Underlying timer for the current remainder
	underlying *time.Timer

	// Visibility observer detach
	removeObserver func()

	// Deferred immediate fire, set under the lock when the remainder is
	// already exhausted at schedule time and invoked after release.
	firePending func()

	fired   bool
	cleared bool
}

// Start creates and starts a pausable timer. The callback is invoked
// exactly once after the cumulative Active time reaches duration, unless
// Clear is called first. A non-positive duration fires the callback
// immediately.
func Start(monitor *visibility.Monitor, duration time.Duration, callback func()) *Timer {
	t := &Timer{
		duration: duration,
		callback: callback,
	}

	t.removeObserver = monitor.OnTransition(t.onTransition)

	t.mu.Lock()
	if monitor.State() == visibility.StateActive {
		t.scheduleLocked()
	}
	// Suspended at start: counting begins on the first resume.
	fire, detach := t.takePendingLocked()
	t.mu.Unlock()

	if detach != nil {
		detach()
	}
	if fire != nil {
		fire()
	}
	return t
}

// Clear cancels the timer. The callback will not be invoked. Calling
// Clear more than once, or after the timer fired, is a no-op.
func (t *Timer) Clear() {
	t.mu.Lock()
	if t.cleared || t.fired {
		t.mu.Unlock()
		return
	}
	t.cleared = true
	t.activeSince = time.Time{}
	if t.underlying != nil {
		t.underlying.Stop()
		t.underlying = nil
	}
	remove := t.removeObserver
	t.removeObserver = nil
	t.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// Remaining returns the Active time still required before the timer fires.
// Returns 0 once the timer has fired or been cleared.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fired || t.cleared {
		return 0
	}

	elapsed := t.elapsedWhileActive
	if !t.activeSince.IsZero() {
		elapsed += time.Since(t.activeSince)
	}
	remaining := t.duration - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// onTransition reacts to visibility changes while the timer is live.
func (t *Timer) onTransition(tr visibility.Transition) {
	t.mu.Lock()
	if t.fired || t.cleared {
		t.mu.Unlock()
		return
	}

	switch tr.To {
	case visibility.StateSuspended:
		// Fold the Active time spent since the last (re)schedule and
		// stop the underlying timer.
		if !t.activeSince.IsZero() {
			t.elapsedWhileActive += tr.At.Sub(t.activeSince)
			if t.elapsedWhileActive > t.duration {
				t.elapsedWhileActive = t.duration
			}
			t.activeSince = time.Time{}
		}
		if t.underlying != nil {
			t.underlying.Stop()
			t.underlying = nil
		}

	case visibility.StateActive:
		t.scheduleLocked()
	}

	fire, detach := t.takePendingLocked()
	t.mu.Unlock()

	if detach != nil {
		detach()
	}
	if fire != nil {
		fire()
	}
}

// scheduleLocked arms the underlying timer for the current remainder.
// Caller holds t.mu. If the remainder is non-positive the timer fires
// immediately: the callback is staged in firePending for the caller to
// invoke outside the lock.
func (t *Timer) scheduleLocked() {
	remaining := t.duration - t.elapsedWhileActive
	if remaining <= 0 {
		t.fired = true
		t.firePending = t.callback
		return
	}

	t.activeSince = time.Now()
	t.underlying = time.AfterFunc(remaining, t.expire)
}

// takePendingLocked collects the staged immediate fire and, when the timer
// just became inert, the observer detach. Caller holds t.mu.
func (t *Timer) takePendingLocked() (fire, detach func()) {
	if !t.fired {
		return nil, nil
	}

	fire = t.firePending
	t.firePending = nil
	t.activeSince = time.Time{}
	if t.underlying != nil {
		t.underlying.Stop()
		t.underlying = nil
	}
	detach = t.removeObserver
	t.removeObserver = nil
	return fire, detach
}

// expire handles the underlying timer firing.
func (t *Timer) expire() {
	t.mu.Lock()
	if t.fired || t.cleared {
		t.mu.Unlock()
		return
	}
	t.elapsedWhileActive = t.duration
	t.fired = true
	cb := t.callback
	_, detach := t.takePendingLocked()
	t.mu.Unlock()

	if detach != nil {
		detach()
	}
	cb()
}
