package suppress

import (
	"strings"
	"testing"
	"time"
)

func TestGateDefaultAllows(t *testing.T) {
	g := NewGate()

	if g.ShouldSuppress("network error") {
		t.Error("empty gate suppressed a message")
	}
	if g.WindowActive() {
		t.Error("WindowActive() = true on a fresh gate")
	}
}

func TestGateWindowSuppresses(t *testing.T) {
	g := NewGate()

	g.BeginWindow(time.Minute)
	if !g.WindowActive() {
		t.Fatal("WindowActive() = false after BeginWindow")
	}
	if !g.ShouldSuppress("request failed") {
		t.Error("window did not suppress")
	}

	g.EndWindow()
	if g.WindowActive() {
		t.Error("WindowActive() = true after EndWindow")
	}
	if g.ShouldSuppress("request failed") {
		t.Error("message suppressed after EndWindow")
	}
}

func TestGateWindowExpires(t *testing.T) {
	g := NewGate()

	g.BeginWindow(15 * time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if g.WindowActive() {
		t.Error("window still active past expiry")
	}
	if g.ShouldSuppress("late error") {
		t.Error("expired window suppressed a message")
	}
}

func TestGateReopenResetsExpiry(t *testing.T) {
	g := NewGate()

	g.BeginWindow(20 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	g.BeginWindow(60 * time.Millisecond) // reset, not stacked

	time.Sleep(30 * time.Millisecond)
	// Original window would have expired; the reset one has not
	if !g.WindowActive() {
		t.Error("reopened window expired on the original schedule")
	}
}

func TestGateDefaultWindowDuration(t *testing.T) {
	g := NewGate()

	g.BeginWindow(0)
	if !g.WindowActive() {
		t.Error("BeginWindow(0) did not open the default window")
	}
}

func TestGateFilterFirstRejectWins(t *testing.T) {
	g := NewGate()

	var order []string
	g.RegisterFilter(func(msg string) bool {
		order = append(order, "first")
		return true
	})
	g.RegisterFilter(func(msg string) bool {
		order = append(order, "second")
		return false // rejects
	})
	g.RegisterFilter(func(msg string) bool {
		order = append(order, "third")
		return true
	})

	if !g.ShouldSuppress("anything") {
		t.Fatal("rejecting filter did not suppress")
	}
	// Short-circuit: third never runs
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("filter evaluation order = %v, want [first second]", order)
	}
}

func TestGateFilterPanicFailsOpen(t *testing.T) {
	g := NewGate()

	g.RegisterFilter(func(msg string) bool {
		panic("broken filter")
	})

	if g.ShouldSuppress("real error the user must see") {
		t.Error("panicking filter suppressed a notification")
	}
}

func TestGateFilterPanicDoesNotMaskLaterReject(t *testing.T) {
	g := NewGate()

	g.RegisterFilter(func(msg string) bool { panic("broken") })
	g.RegisterFilter(func(msg string) bool {
		return !strings.Contains(msg, "transient")
	})

	if !g.ShouldSuppress("transient socket reset") {
		t.Error("rejecting filter after a panicking one did not suppress")
	}
	if g.ShouldSuppress("permanent failure") {
		t.Error("allowed message was suppressed")
	}
}

func TestGateRemoveFilter(t *testing.T) {
	g := NewGate()

	h := g.RegisterFilter(func(string) bool { return false })
	if !g.ShouldSuppress("msg") {
		t.Fatal("filter not active")
	}

	g.RemoveFilter(h)
	g.RemoveFilter(h) // no-op

	if g.ShouldSuppress("msg") {
		t.Error("removed filter still suppressing")
	}
	if g.FilterCount() != 0 {
		t.Errorf("FilterCount() = %d, want 0", g.FilterCount())
	}
}

func TestGateMessagePassedToFilters(t *testing.T) {
	g := NewGate()

	g.RegisterFilter(func(msg string) bool {
		return msg != "suppress me"
	})

	if !g.ShouldSuppress("suppress me") {
		t.Error("matching message not suppressed")
	}
	if g.ShouldSuppress("show me") {
		t.Error("non-matching message suppressed")
	}
}
