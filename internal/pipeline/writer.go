package pipeline

import (
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/TimZoet/logandload-module/internal/metrics"
)

// Writer is the single background task that drains the global buffer's back
// half to disk. Grounded on pebble's record.LogWriter write loop (acquire
// signal, write, release done) but simplified to a single block per
// iteration since there is no chunking/CRC requirement here.
type Writer struct {
	sink   io.Writer
	global *GlobalBuffer
	m      *metrics.Registry
	lat    *hdrhistogram.Histogram

	// degraded is set once a write fails; the background task keeps
	// draining (so producers never deadlock on the semaphore handoff) but
	// silently drops the bytes it can no longer persist.
	degraded bool

	stopCh chan struct{}
}

// NewWriter constructs a Writer that appends to sink.
func NewWriter(sink io.Writer, global *GlobalBuffer, m *metrics.Registry) *Writer {
	return &Writer{
		sink:   sink,
		global: global,
		m:      m,
		lat:    hdrhistogram.New(1, 10_000_000, 3),
		stopCh: make(chan struct{}, 1),
	}
}

// RequestStop asks Run to exit. It wakes a Writer blocked waiting for work
// through the Writer's own stop channel; Run still writes out a swap that
// was already signalled before it returns.
func (w *Writer) RequestStop() {
	select {
	case w.stopCh <- struct{}{}:
	default:
	}
}

// Run is the Writer main loop.
func (w *Writer) Run() error {
	for {
		select {
		case <-w.global.signal:
			w.flush()
		case <-w.stopCh:
			// Drain any signal that raced with the stop request, then exit.
			if w.global.TryWaitForWork() {
				w.flush()
			}
			return nil
		}
	}
}

func (w *Writer) flush() {
	start := time.Now()
	data := w.global.Back()
	if len(data) > 0 && !w.degraded {
		if _, err := w.sink.Write(data); err != nil {
			w.degraded = true
			if w.m != nil {
				w.m.WriterErrors.Inc()
			}
		} else if w.m != nil {
			w.m.BytesWritten.Add(float64(len(data)))
		}
	}
	if us := time.Since(start).Microseconds(); us > 0 {
		_ = w.lat.RecordValue(us)
	}
	w.global.FinishBack()
}

// LatencyHistogram returns the flush-latency distribution, in microseconds.
// internal/metrics does not publish it.
func (w *Writer) LatencyHistogram() *hdrhistogram.Histogram { return w.lat }
