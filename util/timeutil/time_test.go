package timeutil

import (
	"testing"
	"time"
)

func TestElapsed(t *testing.T) {
	w := NewAtomicStopwatch()
	time.Sleep(10 * time.Millisecond)
	if w.Elapsed() < 10*time.Millisecond {
		t.Fatalf("elapsed = %v", w.Elapsed())
	}
}

func TestCompareAndRestart(t *testing.T) {
	w := NewAtomicStopwatch()

	if w.CompareAndRestart(time.Hour) {
		t.Fatal("restarted before the threshold elapsed")
	}

	time.Sleep(15 * time.Millisecond)
	if !w.CompareAndRestart(10 * time.Millisecond) {
		t.Fatal("threshold elapsed but stopwatch did not restart")
	}
	// The restart above reset the clock.
	if w.CompareAndRestart(10 * time.Millisecond) {
		t.Fatal("restarted twice for one elapsed interval")
	}
}

func TestRestart(t *testing.T) {
	w := NewAtomicStopwatch()
	time.Sleep(10 * time.Millisecond)
	w.Restart()
	if w.Elapsed() > 5*time.Millisecond {
		t.Fatalf("elapsed after restart = %v", w.Elapsed())
	}
}
