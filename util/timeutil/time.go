package timeutil

import (
	"sync"
	"time"
)

func Since(t time.Time) time.Duration {
	return time.Now().Sub(t)
}

// AtomicStopwatch is a stopwatch shared between worker goroutines.
// All operations are serialized on an internal lock.
type AtomicStopwatch struct {
	mu    sync.Mutex
	start time.Time
}

func NewAtomicStopwatch() *AtomicStopwatch {
	return &AtomicStopwatch{start: time.Now()}
}

func (w *AtomicStopwatch) Elapsed() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Since(w.start)
}

func (w *AtomicStopwatch) Restart() {
	w.mu.Lock()
	w.start = time.Now()
	w.mu.Unlock()
}

// CompareAndRestart restarts the stopwatch and returns true if at least d has
// elapsed since the last restart, otherwise it leaves the stopwatch running
// and returns false.
func (w *AtomicStopwatch) CompareAndRestart(d time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if Since(w.start) < d {
		return false
	}
	w.start = time.Now()
	return true
}
