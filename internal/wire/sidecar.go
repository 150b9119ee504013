package wire

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// EncodeSidecar writes the format sidecar: <streamCount: u64>
// <orderingEnabled: u8> then, for each format, <key: u32><stringLen: u64>
// <stringBytes (NUL-terminated)><category: u32><parameterKey: u32>x|parameters|.
//
// formats must already be in the order the caller wants persisted; callers
// that need deterministic output sort by key first (FormatRegistry.Snapshot
// does this).
func EncodeSidecar(w io.Writer, streamCount uint64, orderingEnabled bool, formats []FormatDescriptor) error {
	bw := bufio.NewWriter(w)

	var hdr [9]byte
	binary.LittleEndian.PutUint64(hdr[0:8], streamCount)
	if orderingEnabled {
		hdr[8] = 1
	}
	if _, err := bw.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "lal: write sidecar header")
	}

	for _, f := range formats {
		var keyBuf [4]byte
		binary.LittleEndian.PutUint32(keyBuf[:], uint32(f.Key))
		if _, err := bw.Write(keyBuf[:]); err != nil {
			return errors.Wrap(err, "lal: write format key")
		}

		strBytes := append([]byte(f.FormatString), 0)
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(strBytes)))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return errors.Wrap(err, "lal: write format string length")
		}
		if _, err := bw.Write(strBytes); err != nil {
			return errors.Wrap(err, "lal: write format string")
		}

		var catBuf [4]byte
		binary.LittleEndian.PutUint32(catBuf[:], f.Category)
		if _, err := bw.Write(catBuf[:]); err != nil {
			return errors.Wrap(err, "lal: write format category")
		}

		for _, p := range f.Parameters {
			var pBuf [4]byte
			binary.LittleEndian.PutUint32(pBuf[:], uint32(p))
			if _, err := bw.Write(pBuf[:]); err != nil {
				return errors.Wrap(err, "lal: write parameter key")
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "lal: flush sidecar")
	}
	return nil
}

// DecodedSidecar is the result of decoding a format sidecar.
type DecodedSidecar struct {
	StreamCount     uint64
	OrderingEnabled bool
	Formats         map[MessageKey]*FormatDescriptor
}

// DecodeSidecar parses a format sidecar previously written by EncodeSidecar.
// parameterSize resolves a ParameterKey to its byte width; it must be able
// to resolve every parameter key referenced by the sidecar, or
// ErrUnregisteredParameter is returned.
func DecodeSidecar(r io.Reader, parameterSize func(ParameterKey) (int, bool)) (*DecodedSidecar, error) {
	br := bufio.NewReader(r)

	var hdr [9]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "lal: read sidecar header"), ErrIoRead)
	}
	out := &DecodedSidecar{
		StreamCount:     binary.LittleEndian.Uint64(hdr[0:8]),
		OrderingEnabled: hdr[8] != 0,
		Formats:         map[MessageKey]*FormatDescriptor{},
	}

	for {
		var keyBuf [4]byte
		_, err := io.ReadFull(br, keyBuf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lal: read format key"), ErrIoRead)
		}
		key := MessageKey(binary.LittleEndian.Uint32(keyBuf[:]))

		var lenBuf [8]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lal: read format string length"), ErrIoRead)
		}
		strLen := binary.LittleEndian.Uint64(lenBuf[:])

		strBytes := make([]byte, strLen)
		if _, err := io.ReadFull(br, strBytes); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lal: read format string"), ErrIoRead)
		}
		// Strip trailing NUL.
		formatString := string(strBytes[:len(strBytes)-1])

		var catBuf [4]byte
		if _, err := io.ReadFull(br, catBuf[:]); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lal: read format category"), ErrIoRead)
		}
		category := binary.LittleEndian.Uint32(catBuf[:])

		paramCount := CountParameters(formatString)
		var params []ParameterKey
		var sizes []int
		if paramCount > 0 {
			params = make([]ParameterKey, paramCount)
			sizes = make([]int, paramCount)
		}
		for i := 0; i < paramCount; i++ {
			var pBuf [4]byte
			if _, err := io.ReadFull(br, pBuf[:]); err != nil {
				return nil, errors.Mark(errors.Wrap(err, "lal: read parameter key"), ErrIoRead)
			}
			pk := ParameterKey(binary.LittleEndian.Uint32(pBuf[:]))
			size, ok := parameterSize(pk)
			if !ok {
				return nil, errors.Mark(errors.Newf("lal: parameter key %d not registered on analyzer", pk), ErrUnregisteredParameter)
			}
			params[i] = pk
			sizes[i] = size
		}

		if _, dup := out.Formats[key]; dup {
			return nil, errors.Mark(errors.Newf("lal: format key %d appears twice in sidecar", key), ErrDuplicateFormat)
		}

		desc := NewFormatDescriptor(key, formatString, category, params, sizes)
		out.Formats[key] = &desc
	}

	return out, nil
}
