package pipeline

import (
	"sync"

	"github.com/TimZoet/logandload-module/internal/metrics"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// Consolidator is the single background task that drains the shared
// pending-stream queue and packs each drained stream's back buffer into the
// global front buffer as length-prefixed blocks. It is grounded on the
// mutex+cond "flusher" struct in pebble's record.LogWriter (ready/done cond
// vars, a pending slice, a flushing flag) rather than on a channel-based
// worker pool, because it needs an explicit "notified" flag distinguishing
// "nothing to do yet" from "stop requested with nothing pending".
type Consolidator struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []*StreamBuffer
	notified bool
	stopped  bool

	global *GlobalBuffer
	m      *metrics.Registry
}

// NewConsolidator constructs a Consolidator writing into global.
func NewConsolidator(global *GlobalBuffer, m *metrics.Registry) *Consolidator {
	c := &Consolidator{global: global, m: m}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Enqueue adds s to the pending queue and wakes the Consolidator. Called
// through Log.flush when a stream's front buffer fills, on the producer's
// own goroutine.
func (c *Consolidator) Enqueue(s *StreamBuffer) {
	c.mu.Lock()
	c.pending = append(c.pending, s)
	c.notified = true
	c.mu.Unlock()
	c.cond.Signal()
}

// RequestStop tells Run to exit after finishing any batch already drained,
// and wakes it if it is currently waiting for work.
func (c *Consolidator) RequestStop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Drain returns and clears whatever remains in the pending queue. Used
// during shutdown after Run has returned, to find streams whose back
// buffer was enqueued but never consolidated.
func (c *Consolidator) Drain() []*StreamBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.pending
	c.pending = nil
	return q
}

// PendingLen reports the current pending queue depth, for the
// pending_queue_depth gauge.
func (c *Consolidator) PendingLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Run is the Consolidator main loop. It returns once RequestStop has been
// called and the pending queue has been fully drained.
func (c *Consolidator) Run() error {
	for {
		c.mu.Lock()
		for !c.notified && !c.stopped {
			c.cond.Wait()
		}
		q := c.pending
		c.pending = nil
		c.notified = false
		stop := c.stopped
		c.mu.Unlock()

		for _, s := range q {
			c.consolidate(s)
		}

		if stop && len(q) == 0 {
			return nil
		}
	}
}

func (c *Consolidator) consolidate(s *StreamBuffer) {
	var hdr [wire.BlockHeaderSize]byte
	wire.PutBlockHeader(hdr[:], s.Index, uint64(s.BackUsed()))

	if c.global.Remaining() < wire.BlockHeaderSize {
		c.global.Swap()
	}
	c.global.AppendFront(hdr[:])
	if c.global.Remaining() == 0 {
		c.global.Swap()
	}

	payload := s.Back()
	for len(payload) > 0 {
		n := c.global.Remaining()
		if n > len(payload) {
			n = len(payload)
		}
		c.global.AppendFront(payload[:n])
		payload = payload[n:]
		if c.global.Remaining() == 0 {
			c.global.Swap()
		}
	}

	if c.m != nil {
		c.m.BlocksConsolidated.Inc()
		c.m.BytesConsolidated.Add(float64(s.BackUsed()))
	}

	s.ReleaseDone()
}
