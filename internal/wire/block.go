package wire

import "encoding/binary"

// BlockHeaderSize is the size in bytes of a StreamBlock header:
// <streamIndex: u64><blockSize: u64>.
const BlockHeaderSize = 16

// PutBlockHeader encodes a StreamBlock header into buf, which must be at
// least BlockHeaderSize bytes.
func PutBlockHeader(buf []byte, streamIndex, blockSize uint64) {
	binary.LittleEndian.PutUint64(buf[0:8], streamIndex)
	binary.LittleEndian.PutUint64(buf[8:16], blockSize)
}

// ReadBlockHeader decodes a StreamBlock header from buf, which must be at
// least BlockHeaderSize bytes.
func ReadBlockHeader(buf []byte) (streamIndex, blockSize uint64) {
	streamIndex = binary.LittleEndian.Uint64(buf[0:8])
	blockSize = binary.LittleEndian.Uint64(buf[8:16])
	return
}

// PutMessageKey encodes a MessageKey as a little-endian u32.
func PutMessageKey(buf []byte, k MessageKey) {
	binary.LittleEndian.PutUint32(buf, uint32(k))
}

// ReadMessageKey decodes a MessageKey from a little-endian u32.
func ReadMessageKey(buf []byte) MessageKey {
	return MessageKey(binary.LittleEndian.Uint32(buf))
}

// PutOrderingIndex encodes a monotone ordering index as a little-endian u64.
func PutOrderingIndex(buf []byte, idx uint64) {
	binary.LittleEndian.PutUint64(buf, idx)
}

// ReadOrderingIndex decodes an ordering index from a little-endian u64.
func ReadOrderingIndex(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}
