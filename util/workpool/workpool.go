package workpool

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"
)

// Pool runs independent units of work on a bounded set of goroutines.
// Every submitted unit runs to completion; a failed unit never cancels its
// siblings. Wait reports the first failure in submission order.
type Pool struct {
	g errgroup.Group

	mu   sync.Mutex
	errs []error
}

// New creates a pool of the given width. A non-positive width selects the
// logical cpu count of the host.
func New(max int) *Pool {
	if max <= 0 {
		max = autoSize()
	}
	p := new(Pool)
	p.g.SetLimit(max)
	return p
}

func autoSize() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Submit schedules one unit of work. It blocks while the pool is saturated.
func (p *Pool) Submit(f func() error) {
	p.mu.Lock()
	idx := len(p.errs)
	p.errs = append(p.errs, nil)
	p.mu.Unlock()

	p.g.Go(func() error {
		if err := f(); err != nil {
			p.mu.Lock()
			p.errs[idx] = err
			p.mu.Unlock()
		}
		return nil
	})
}

// Wait blocks until every submitted unit has finished. The pool is reusable
// after Wait returns.
func (p *Pool) Wait() error {
	p.g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for _, err := range p.errs {
		if err != nil {
			first = err
			break
		}
	}
	p.errs = p.errs[:0]
	return first
}
