package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/grid"
)

const recordTimeout = 5 * time.Second

// Recorder writes cycle reports to a Journal off the game loop. It
// implements grid.Observer; when the queue is full reports are dropped and
// counted rather than stalling the tick.
type Recorder struct {
	journal Journal
	log     *zap.Logger

	mu      sync.RWMutex // guards closed against sends on a closed channel
	closed  bool
	ch      chan grid.CycleReport
	wg      sync.WaitGroup
	once    sync.Once
	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

func NewRecorder(j Journal, queue int, log *zap.Logger) *Recorder {
	if queue <= 0 {
		queue = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		journal: j,
		log:     log,
		ch:      make(chan grid.CycleReport, queue),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop()
	}()
	return r
}

func (r *Recorder) CycleCompleted(rep grid.CycleReport) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- rep:
	default:
		r.dropped.Add(1)
		r.log.Warn("journal queue full, cycle dropped", zap.Uint64("cycle", rep.Cycle))
	}
}

func (r *Recorder) loop() {
	for rep := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := r.journal.Record(ctx, rep)
		cancel()
		if err != nil {
			r.failed.Add(1)
			r.log.Error("journal write failed", zap.Uint64("cycle", rep.Cycle), zap.Error(err))
			continue
		}
		r.written.Add(1)
		r.log.Debug("cycle journaled",
			zap.Uint64("cycle", rep.Cycle),
			zap.String("id", rep.ID.String()))
	}
}

// Close drains queued reports and closes the journal.
func (r *Recorder) Close() error {
	var err error
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.ch)
		r.mu.Unlock()
		r.wg.Wait()
		err = r.journal.Close()
	})
	return err
}

// Stats returns written, dropped and failed counts.
func (r *Recorder) Stats() (written, dropped, failed uint64) {
	return r.written.Load(), r.dropped.Load(), r.failed.Load()
}
