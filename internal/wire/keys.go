// Package wire defines the on-disk representation of logandload messages:
// message and parameter keys, format descriptors, and the codecs for log
// blocks and the format sidecar.
package wire

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// MessageKey identifies either a reserved framing marker or a registered
// format type. Reserved values are AnonRegionStart, NamedRegionStart, and
// RegionEnd; every other value names a user format.
type MessageKey uint32

// ParameterKey identifies a parameter type. The zero value is a wildcard
// used by FlagTree message matchers.
type ParameterKey uint32

// Reserved MessageKey values, fixed by the wire format.
const (
	AnonRegionStart  MessageKey = 0
	NamedRegionStart MessageKey = 1
	RegionEnd        MessageKey = 2
)

// IsReserved reports whether k is one of the framing markers rather than a
// user format key.
func (k MessageKey) IsReserved() bool {
	return k == AnonRegionStart || k == NamedRegionStart || k == RegionEnd
}

// HashString derives a 32-bit key from a byte string using xxhash, folding
// the 64-bit digest down with xor as pebble's own internal hashing helpers
// do when a 32-bit key space is required.
func HashString(s string) uint32 {
	h := xxhash.Sum64String(s)
	return uint32(h) ^ uint32(h>>32)
}

// HashMessage derives the runtime MessageKey for a format string, category,
// and ordered parameter key list. Keys are computed once, at first emit,
// and cached behind a one-shot guard (see logandload's Format.register).
func HashMessage(formatString string, category uint32, parameters []ParameterKey) MessageKey {
	h := xxhash.New()
	_, _ = h.WriteString(formatString)
	var buf [4]byte
	putU32(buf[:], category)
	_, _ = h.Write(buf[:])
	for _, p := range parameters {
		putU32(buf[:], uint32(p))
		_, _ = h.Write(buf[:])
	}
	sum := h.Sum64()
	return MessageKey(uint32(sum) ^ uint32(sum>>32))
}

// HashFormatString derives messageHash, the FormatDescriptor field that
// depends only on the format string (used by FlagTree.FilterMessage to
// match by format identity independent of parameter types).
func HashFormatString(formatString string) MessageKey {
	return MessageKey(HashString(formatString))
}

var (
	paramMu    sync.Mutex
	paramKeys  = map[reflect.Type]ParameterKey{}
)

// HashParameterType derives the ParameterKey for a Go type, caching the
// result per reflect.Type so repeated calls for the same type are free
// after the first.
func HashParameterType(t reflect.Type) ParameterKey {
	paramMu.Lock()
	defer paramMu.Unlock()
	if k, ok := paramKeys[t]; ok {
		return k
	}
	k := ParameterKey(HashString(t.PkgPath() + "." + t.String()))
	paramKeys[t] = k
	return k
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
