// Package logandload is the public façade of the logging pipeline:
// concurrent producers ("streams") emit typed messages and nested regions,
// a background Consolidator packs stream buffers into a global buffer, and
// a background Writer drains it to disk.
package logandload

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/TimZoet/logandload-module/internal/format"
	"github.com/TimZoet/logandload-module/internal/metrics"
	"github.com/TimZoet/logandload-module/internal/pipeline"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// Log owns the log file, the format registry, and the background
// consolidation/write pipeline. Create one with Open, create streams with
// CreateStream, and release everything with Close.
type Log struct {
	path string
	opts *Options

	file interface {
		Write([]byte) (int, error)
		Close() error
	}

	formats      *format.Registry
	messageIndex atomic.Uint64

	streamsMu sync.Mutex
	streams   []*Stream

	global       *pipeline.GlobalBuffer
	consolidator *pipeline.Consolidator
	writer       *pipeline.Writer
	group        *pipeline.Group

	metrics *metrics.Registry

	closed atomic.Bool
}

// Open creates a new Log, opening path for writing (the sidecar path is
// path+".fmt", written at Close) and starting the Consolidator and Writer
// background goroutines.
func Open(path string, opts *Options) (*Log, error) {
	o := opts.EnsureDefaults()

	file, err := o.WriterOpener(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "lal: open log file %s", path), wire.ErrIoOpen)
	}

	m := metrics.New(o.MetricsRegisterer)
	global := pipeline.NewGlobalBuffer(o.GlobalBufferSize)
	consolidator := pipeline.NewConsolidator(global, m)
	writer := pipeline.NewWriter(file, global, m)
	group := pipeline.NewGroup(consolidator, writer)

	return &Log{
		path:         path,
		opts:         o,
		file:         file,
		formats:      format.Default,
		global:       global,
		consolidator: consolidator,
		writer:       writer,
		group:        group,
		metrics:      m,
	}, nil
}

// CreateStream creates a new stream with the given buffer size in bytes.
func (l *Log) CreateStream(bufferSize int) *Stream {
	l.streamsMu.Lock()
	defer l.streamsMu.Unlock()

	index := uint64(len(l.streams))
	s := &Stream{
		log:   l,
		index: index,
		buf:   pipeline.NewStreamBuffer(index, bufferSize),
	}
	l.streams = append(l.streams, s)
	if l.metrics != nil {
		l.metrics.StreamsActive.Inc()
	}
	return s
}

// StreamCount reports how many streams have been created.
func (l *Log) StreamCount() int {
	l.streamsMu.Lock()
	defer l.streamsMu.Unlock()
	return len(l.streams)
}

// nextOrderingIndex returns the next monotone message index, only called
// when OrderingEnabled is set.
func (l *Log) nextOrderingIndex() uint64 {
	return l.messageIndex.Add(1) - 1
}

// flush enqueues s's already-swapped back buffer with the Consolidator and
// updates the queue-depth gauge.
func (l *Log) flush(s *pipeline.StreamBuffer) {
	l.consolidator.Enqueue(s)
	if l.metrics != nil {
		l.metrics.QueueDepth.Set(float64(l.consolidator.PendingLen()))
	}
}

// Close stops and joins the Consolidator, then the Writer; appends whatever
// remains in the global front buffer, then any still-queued stream back
// buffers, then any still-unflushed stream front buffers, in that order;
// closes the log file; and serializes the format sidecar.
func (l *Log) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	if err := l.group.Stop(); err != nil {
		return errors.Wrap(err, "lal: stop pipeline")
	}

	var writeErr error
	write := func(p []byte) {
		if writeErr != nil || len(p) == 0 {
			return
		}
		if _, err := l.file.Write(p); err != nil {
			writeErr = err
		}
	}
	writeBlock := func(index uint64, p []byte) {
		var hdr [wire.BlockHeaderSize]byte
		wire.PutBlockHeader(hdr[:], index, uint64(len(p)))
		write(hdr[:])
		write(p)
	}

	// Step 3: whatever the Consolidator packed into the global front buffer
	// but never got to swap out.
	write(l.global.FrontBytes())

	// Step 4: streams whose back buffer was enqueued but never
	// consolidated.
	for _, sb := range l.consolidator.Drain() {
		if sb.BackUsed() > 0 {
			writeBlock(sb.Index, sb.Back())
		}
	}

	// Step 5: streams whose front buffer was never flushed at all.
	l.streamsMu.Lock()
	streams := append([]*Stream(nil), l.streams...)
	l.streamsMu.Unlock()
	for _, s := range streams {
		if s.buf.FrontOffset() > 0 {
			writeBlock(s.buf.Index, s.buf.FrontBytes())
		}
	}

	closeErr := l.file.Close()
	sidecarErr := l.writeSidecar()

	switch {
	case writeErr != nil:
		return errors.Mark(errors.Wrap(writeErr, "lal: write log tail"), wire.ErrIoWrite)
	case closeErr != nil:
		return errors.Mark(errors.Wrap(closeErr, "lal: close log file"), wire.ErrIoWrite)
	default:
		return sidecarErr
	}
}

func (l *Log) writeSidecar() error {
	fmtPath := l.path + ".fmt"
	f, err := l.opts.WriterOpener(fmtPath)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "lal: open sidecar %s", fmtPath), wire.ErrIoOpen)
	}
	defer f.Close()

	l.streamsMu.Lock()
	streamCount := uint64(len(l.streams))
	l.streamsMu.Unlock()

	if err := wire.EncodeSidecar(f, streamCount, l.opts.OrderingEnabled, l.formats.Snapshot()); err != nil {
		return errors.Mark(err, wire.ErrIoWrite)
	}
	return nil
}
