package catalog

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/tiglabs/tabledb/util/timeutil"
)

// Messages, so that it's not boring to wait for the server to load for a
// long time.
const (
	printEachNObjects = 256
	printEachNSeconds = 5 * time.Second
)

// progressLog counts finished units across workers and emits a rate-limited
// message: on every batch of printEachNObjects, on the final unit, and
// whenever printEachNSeconds elapsed since the last message.
type progressLog struct {
	stage     string
	total     int
	processed int64
	watch     *timeutil.AtomicStopwatch
	sink      func(stage string, processed, total int)
}

func newProgressLog(stage string, total int, sink func(string, int, int)) *progressLog {
	if sink == nil {
		sink = logProgress
	}
	return &progressLog{
		stage: stage,
		total: total,
		watch: timeutil.NewAtomicStopwatch(),
		sink:  sink,
	}
}

// step records one finished unit. At most one message is emitted per unit.
func (p *progressLog) step() {
	n := int(atomic.AddInt64(&p.processed, 1))
	if n%printEachNObjects == 0 || n == p.total {
		p.watch.Restart()
		p.sink(p.stage, n, p.total)
		return
	}
	if p.watch.CompareAndRestart(printEachNSeconds) {
		p.sink(p.stage, n, p.total)
	}
}

func logProgress(stage string, processed, total int) {
	glog.Infof("%s: %.2f%%", stage, float64(processed)*100.0/float64(total))
}
