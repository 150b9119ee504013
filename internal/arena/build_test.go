package arena

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/TimZoet/logandload-module/internal/wire"
)

// nodeShape is a comparable summary of a Node, dropping the raw Data payload
// so pretty.Diff produces a readable failure message instead of dumping byte
// slices.
type nodeShape struct {
	Type       NodeType
	Parent     uint32
	FirstChild uint32
	ChildCount uint32
}

func shapes(nodes []Node) []nodeShape {
	out := make([]nodeShape, len(nodes))
	for i, n := range nodes {
		out[i] = nodeShape{Type: n.Type, Parent: n.Parent, FirstChild: n.FirstChild, ChildCount: n.ChildCount}
	}
	return out
}

func descriptor(key wire.MessageKey, formatString string, size int) wire.FormatDescriptor {
	n := wire.CountParameters(formatString)
	params := make([]wire.ParameterKey, n)
	sizes := make([]int, n)
	if n == 1 {
		sizes[0] = size
	}
	return wire.NewFormatDescriptor(key, formatString, 0, params, sizes)
}

func appendBlock(data []byte, streamIndex uint64, payload []byte) []byte {
	var hdr [wire.BlockHeaderSize]byte
	wire.PutBlockHeader(hdr[:], streamIndex, uint64(len(payload)))
	data = append(data, hdr[:]...)
	return append(data, payload...)
}

// TestBuildTinyLog builds one stream, msgA(u32), a nested anonymous region
// containing msgB(f64), then the region closes, and checks the resulting
// arena shape.
func TestBuildTinyLog(t *testing.T) {
	const msgAKey wire.MessageKey = 100
	const msgBKey wire.MessageKey = 101

	msgA := descriptor(msgAKey, "a={}", 4)
	msgB := descriptor(msgBKey, "b={}", 8)

	sidecar := &wire.DecodedSidecar{
		StreamCount: 1,
		Formats: map[wire.MessageKey]*wire.FormatDescriptor{
			msgAKey: &msgA,
			msgBKey: &msgB,
		},
	}

	var payload []byte
	var keyBuf [4]byte
	binary.LittleEndian.PutUint32(keyBuf[:], uint32(msgAKey))
	payload = append(payload, keyBuf[:]...)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], 7)
	payload = append(payload, u32[:]...)

	binary.LittleEndian.PutUint32(keyBuf[:], uint32(wire.AnonRegionStart))
	payload = append(payload, keyBuf[:]...)

	binary.LittleEndian.PutUint32(keyBuf[:], uint32(msgBKey))
	payload = append(payload, keyBuf[:]...)
	var f64 [8]byte
	binary.LittleEndian.PutUint64(f64[:], math.Float64bits(1.5))
	payload = append(payload, f64[:]...)

	binary.LittleEndian.PutUint32(keyBuf[:], uint32(wire.RegionEnd))
	payload = append(payload, keyBuf[:]...)

	data := appendBlock(nil, 0, payload)

	tree, err := Build(data, 1, false, sidecar)
	require.NoError(t, err)

	// Log -> Stream -> [msgA, Region -> [msgB]]
	require.Len(t, tree.Nodes, 1+1+1+2) // log, stream, region, msgA, msgB
	log := &tree.Nodes[0]
	require.Equal(t, NodeLog, log.Type)
	require.EqualValues(t, 1, log.ChildCount)

	stream := &tree.Nodes[log.FirstChild]
	require.Equal(t, NodeStream, stream.Type)
	require.EqualValues(t, 2, stream.ChildCount)

	first := &tree.Nodes[stream.FirstChild]
	require.Equal(t, NodeMessage, first.Type)
	require.Equal(t, msgAKey, first.FormatKey)
	require.EqualValues(t, 7, binary.LittleEndian.Uint32(first.Data))

	region := &tree.Nodes[stream.FirstChild+1]
	require.Equal(t, NodeRegion, region.Type)
	require.False(t, region.HasFormat)
	require.EqualValues(t, 1, region.ChildCount)

	msg := &tree.Nodes[region.FirstChild]
	require.Equal(t, NodeMessage, msg.Type)
	require.Equal(t, msgBKey, msg.FormatKey)
	require.InDelta(t, 1.5, math.Float64frombits(binary.LittleEndian.Uint64(msg.Data)), 0)

	want := []nodeShape{
		{Type: NodeLog, Parent: noIndex, FirstChild: 1, ChildCount: 1},
		{Type: NodeStream, Parent: 0, FirstChild: 2, ChildCount: 2},
		{Type: NodeMessage, Parent: 1, FirstChild: noIndex, ChildCount: 0},
		{Type: NodeRegion, Parent: 1, FirstChild: 4, ChildCount: 1},
		{Type: NodeMessage, Parent: 3, FirstChild: noIndex, ChildCount: 0},
	}
	if diff := pretty.Diff(want, shapes(tree.Nodes)); diff != nil {
		t.Fatalf("tree shape mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

func TestBuildTwoBlocksSameStreamMatchesSingleBlock(t *testing.T) {
	const msgAKey wire.MessageKey = 100
	const msgBKey wire.MessageKey = 101
	msgA := descriptor(msgAKey, "a={}", 4)
	msgB := descriptor(msgBKey, "b={}", 8)
	sidecar := &wire.DecodedSidecar{
		StreamCount: 1,
		Formats: map[wire.MessageKey]*wire.FormatDescriptor{
			msgAKey: &msgA,
			msgBKey: &msgB,
		},
	}

	var keyBuf [4]byte
	var block1 []byte
	binary.LittleEndian.PutUint32(keyBuf[:], uint32(msgAKey))
	block1 = append(block1, keyBuf[:]...)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], 7)
	block1 = append(block1, u32[:]...)

	var block2 []byte
	binary.LittleEndian.PutUint32(keyBuf[:], uint32(wire.AnonRegionStart))
	block2 = append(block2, keyBuf[:]...)
	binary.LittleEndian.PutUint32(keyBuf[:], uint32(msgBKey))
	block2 = append(block2, keyBuf[:]...)
	var f64 [8]byte
	binary.LittleEndian.PutUint64(f64[:], math.Float64bits(1.5))
	block2 = append(block2, f64[:]...)
	binary.LittleEndian.PutUint32(keyBuf[:], uint32(wire.RegionEnd))
	block2 = append(block2, keyBuf[:]...)

	var data []byte
	data = appendBlock(data, 0, block1)
	data = appendBlock(data, 0, block2)

	tree, err := Build(data, 1, false, sidecar)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 5)
	stream := &tree.Nodes[tree.Nodes[0].FirstChild]
	require.EqualValues(t, 2, stream.ChildCount)
}

func TestBuildMalformedTruncatedBlock(t *testing.T) {
	sidecar := &wire.DecodedSidecar{StreamCount: 1, Formats: map[wire.MessageKey]*wire.FormatDescriptor{}}
	_, err := Build([]byte{1, 2, 3}, 1, false, sidecar)
	require.True(t, errors.Is(err, wire.ErrMalformedLog), "got %v", err)
}

func TestBuildMalformedUnbalancedRegion(t *testing.T) {
	sidecar := &wire.DecodedSidecar{StreamCount: 1, Formats: map[wire.MessageKey]*wire.FormatDescriptor{}}
	var keyBuf [4]byte
	binary.LittleEndian.PutUint32(keyBuf[:], uint32(wire.RegionEnd))
	data := appendBlock(nil, 0, keyBuf[:])

	_, err := Build(data, 1, false, sidecar)
	require.True(t, errors.Is(err, wire.ErrMalformedLog), "got %v", err)
}
