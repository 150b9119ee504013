package logandload

import (
	"github.com/TimZoet/logandload-module/internal/pipeline"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// Stream is a single producer's channel into a Log. Streams are not safe
// for concurrent use by multiple goroutines: exactly one producer owns a
// given Stream. Distinct streams never contend with each other; only the
// shared Consolidator/Writer pair does.
type Stream struct {
	log   *Log
	index uint64
	buf   *pipeline.StreamBuffer

	depth int // open region nesting depth, detached regions included
}

// entryHeaderSize is the fixed-size prefix a user-key entry carries: a
// MessageKey, plus the ordering index when enabled. Reserved-key entries
// (region markers, source info) never carry the ordering index and use a
// plain 4-byte key prefix instead; see emit.
func (s *Stream) entryHeaderSize() int {
	n := 4
	if s.log.opts.OrderingEnabled {
		n += 8
	}
	return n
}

// Message emits a single message for the given format, gated by the Log's
// Category. parameterBytes must be exactly f.MessageSize() bytes, already
// encoded in parameter-key order; callers typically build it with a small
// helper at the call site.
func (s *Stream) Message(f *Format, parameterBytes []byte) {
	if !s.log.opts.Category.Message(f.Category()) {
		return
	}
	if len(parameterBytes) != f.MessageSize() {
		panic("logandload: parameter byte length does not match format's declared message size")
	}
	key := f.register(s.log.formats)
	s.emitMessage(key, parameterBytes)
}

// emitMessage writes one user-key entry (header, optional ordering index,
// payload) into the stream's front buffer, flushing first if there isn't
// room. A single entry larger than the whole buffer capacity is not
// supported: a message plus its header must always fit in one buffer half.
func (s *Stream) emitMessage(key wire.MessageKey, payload []byte) {
	needed := s.entryHeaderSize() + len(payload)
	s.checkFlush(needed)

	hdr := s.buf.Reserve(needed)
	wire.PutMessageKey(hdr, key)
	off := 4
	if s.log.opts.OrderingEnabled {
		wire.PutOrderingIndex(hdr[off:], s.log.nextOrderingIndex())
		off += 8
	}
	copy(hdr[off:], payload)
}

// emit writes one reserved-key entry (region markers, source-info markers)
// into the stream's front buffer: just the key and payload, never an
// ordering index, since the decoder never advances past these looking for
// one regardless of whether ordering is enabled.
func (s *Stream) emit(key wire.MessageKey, payload []byte) {
	needed := 4 + len(payload)
	s.checkFlush(needed)

	hdr := s.buf.Reserve(needed)
	wire.PutMessageKey(hdr, key)
	copy(hdr[4:], payload)
}

// checkFlush swaps and hands off the front buffer if it cannot hold needed
// more bytes, blocking on the previous back buffer's completion before
// reusing it.
func (s *Stream) checkFlush(needed int) {
	if s.buf.Remaining() >= needed {
		return
	}
	s.buf.AcquireDone()
	s.buf.Swap()
	s.log.flush(s.buf)
}

// beginRegion emits a region-start marker (anonymous or named) and returns
// the token End needs to close it.
func (s *Stream) beginRegion(name string) regionToken {
	if !s.log.opts.Category.Region() {
		return regionToken{active: false}
	}
	if name == "" {
		s.emit(wire.AnonRegionStart, nil)
	} else {
		innerKey := wire.HashFormatString(name)
		s.log.formats.Register(wire.NewFormatDescriptor(innerKey, name, 0, nil, nil))
		var keyBytes [4]byte
		wire.PutMessageKey(keyBytes[:], innerKey)
		s.emit(wire.NamedRegionStart, keyBytes[:])
	}
	s.depth++
	return regionToken{active: true, depth: s.depth}
}

// endRegion emits the matching region-end marker.
func (s *Stream) endRegion(tok regionToken) {
	if !tok.active {
		return
	}
	s.emit(wire.RegionEnd, nil)
	s.depth--
}

// SourceInfo emits a one-shot, argument-free source-location message keyed
// by key (typically a hash of file, line, and column computed once at the
// call site), gated by Category.Source() rather than Category.Message. It
// shares the region markers' reserved-key convention: a header with no
// parameter payload.
func (s *Stream) SourceInfo(key wire.MessageKey) {
	if !s.log.opts.Category.Source() {
		return
	}
	s.emit(key, nil)
}
