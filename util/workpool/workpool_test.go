package workpool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAllUnitsRun(t *testing.T) {
	p := New(4)

	var ran int64
	for i := 0; i < 100; i++ {
		p.Submit(func() error {
			atomic.AddInt64(&ran, 1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		t.Fatal(err)
	}
	if ran != 100 {
		t.Fatalf("ran = %d, want 100", ran)
	}
}

func TestFirstErrorBySubmissionOrder(t *testing.T) {
	p := New(8)

	// Make a late submission fail first in wall-clock time; Wait must still
	// report the earliest failed submission.
	errEarly := fmt.Errorf("unit 3 failed")
	errLate := fmt.Errorf("unit 7 failed")
	for i := 0; i < 10; i++ {
		i := i
		p.Submit(func() error {
			switch i {
			case 3:
				time.Sleep(50 * time.Millisecond)
				return errEarly
			case 7:
				return errLate
			}
			return nil
		})
	}
	if err := p.Wait(); err != errEarly {
		t.Fatalf("err = %v, want %v", err, errEarly)
	}
}

func TestFailureDoesNotCancelSiblings(t *testing.T) {
	p := New(2)

	var ran int64
	p.Submit(func() error { return fmt.Errorf("boom") })
	for i := 0; i < 20; i++ {
		p.Submit(func() error {
			atomic.AddInt64(&ran, 1)
			return nil
		})
	}
	if err := p.Wait(); err == nil {
		t.Fatal("expected error")
	}
	if ran != 20 {
		t.Fatalf("ran = %d, want 20", ran)
	}
}

func TestPoolWidthBound(t *testing.T) {
	const width = 3
	p := New(width)

	var running, peak int64
	var mu sync.Mutex
	for i := 0; i < 30; i++ {
		p.Submit(func() error {
			n := atomic.AddInt64(&running, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&running, -1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		t.Fatal(err)
	}
	if peak > width {
		t.Fatalf("peak concurrency %d exceeds pool width %d", peak, width)
	}
}

func TestPoolReusableAfterWait(t *testing.T) {
	p := New(2)

	p.Submit(func() error { return fmt.Errorf("first round") })
	if err := p.Wait(); err == nil {
		t.Fatal("expected first round error")
	}

	p.Submit(func() error { return nil })
	if err := p.Wait(); err != nil {
		t.Fatalf("stale error leaked into second round: %v", err)
	}
}

func TestAutoSize(t *testing.T) {
	if n := autoSize(); n <= 0 {
		t.Fatalf("autoSize() = %d", n)
	}
	p := New(0)
	p.Submit(func() error { return nil })
	if err := p.Wait(); err != nil {
		t.Fatal(err)
	}
}
