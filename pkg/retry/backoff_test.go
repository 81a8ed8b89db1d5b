package retry

import (
	"testing"
	"time"
)

func TestLinearSequence(t *testing.T) {
	l := NewLinear(100 * time.Millisecond)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}
	for i, w := range want {
		if got := l.NextBackOff(); got != w {
			t.Errorf("NextBackOff() #%d = %v, want %v", i+1, got, w)
		}
	}
}

func TestLinearReset(t *testing.T) {
	l := NewLinear(time.Second)

	l.NextBackOff()
	l.NextBackOff()
	l.Reset()

	if got := l.NextBackOff(); got != time.Second {
		t.Errorf("NextBackOff() after Reset = %v, want 1s", got)
	}
}

func TestLinearNegativeStep(t *testing.T) {
	l := NewLinear(-time.Second)
	if got := l.NextBackOff(); got != 0 {
		t.Errorf("NextBackOff() = %v, want 0 for negative step", got)
	}
}
