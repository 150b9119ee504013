// Package pipeline implements the consolidation half of the logging
// pipeline: per-stream double buffers, the multi-producer/single-consumer
// handoff queue, the Consolidator that packs stream blocks into a global
// double buffer, and the Writer that drains it to disk.
package pipeline

// StreamBuffer is a per-producer double buffer with a reservation/commit
// protocol and a single-slot completion channel used as a binary semaphore,
// grounded on the free-chan-of-blocks idiom in pebble's record.LogWriter.
type StreamBuffer struct {
	Index uint64

	front       []byte
	frontOffset int

	back     []byte
	backUsed int

	// done is a capacity-1 channel: a full channel means the back buffer is
	// free for the next flush, an empty one means the Consolidator hasn't
	// finished draining it yet. Starts full ("available").
	done chan struct{}
}

// NewStreamBuffer allocates a stream buffer pair of the given capacity.
func NewStreamBuffer(index uint64, capacity int) *StreamBuffer {
	b := &StreamBuffer{
		Index: index,
		front: alignedBuffer(capacity),
		back:  alignedBuffer(capacity),
		done:  make(chan struct{}, 1),
	}
	b.done <- struct{}{}
	return b
}

// Capacity returns the buffer size in bytes.
func (b *StreamBuffer) Capacity() int { return len(b.front) }

// Remaining returns how many bytes are free in the front buffer.
func (b *StreamBuffer) Remaining() int { return len(b.front) - b.frontOffset }

// Reserve returns a slice into the front buffer for the caller to fill with
// exactly `needed` bytes, and advances the offset. The caller must have
// already verified Remaining() >= needed (flushing first if not).
func (b *StreamBuffer) Reserve(needed int) []byte {
	s := b.front[b.frontOffset : b.frontOffset+needed]
	b.frontOffset += needed
	return s
}

// FrontOffset reports how many bytes of the front buffer are in use.
func (b *StreamBuffer) FrontOffset() int { return b.frontOffset }

// FrontBytes returns the in-use prefix of the front buffer, for the final
// drain at shutdown of whatever a stream never got around to flushing.
func (b *StreamBuffer) FrontBytes() []byte { return b.front[:b.frontOffset] }

// AcquireDone blocks until the Consolidator has finished packing the
// previous back buffer into the global buffer.
func (b *StreamBuffer) AcquireDone() { <-b.done }

// ReleaseDone signals that the back buffer has been fully consumed. It is
// idempotent-safe against a full channel (never blocks).
func (b *StreamBuffer) ReleaseDone() {
	select {
	case b.done <- struct{}{}:
	default:
	}
}

// Swap exchanges front and back, snapshotting the number of valid bytes now
// in the back buffer, and resets the front offset for new writes.
func (b *StreamBuffer) Swap() {
	b.front, b.back = b.back, b.front
	b.backUsed = b.frontOffset
	b.frontOffset = 0
}

// Back returns the valid prefix of the back buffer.
func (b *StreamBuffer) Back() []byte { return b.back[:b.backUsed] }

// BackUsed reports how many bytes of the back buffer are valid.
func (b *StreamBuffer) BackUsed() int { return b.backUsed }
