package flagtree

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TimZoet/logandload-module/internal/arena"
	"github.com/TimZoet/logandload-module/internal/wire"
)

const (
	catINFO  uint32 = 1
	catOTHER uint32 = 2
)

// isDescendantOf reports whether node is ancestor itself or a descendant of
// it, climbing arena parent pointers.
func isDescendantOf(tree *arena.Tree, ancestor, node uint32) bool {
	for {
		if node == ancestor {
			return true
		}
		n := &tree.Nodes[node]
		if !n.HasParent() {
			return false
		}
		node = n.Parent
	}
}

// buildRegionFilterFixture builds one stream containing:
//
//	msgINFO(1)
//	region "X":
//	  msgINFO(2)
//	  msgOTHER(3)
//	msgINFO(4)
//
// two INFO messages outside the named region, one INFO and one OTHER
// message inside it.
func buildRegionFilterFixture(t *testing.T) (*arena.Tree, *wire.DecodedSidecar) {
	const (
		infoKey   wire.MessageKey = 200
		otherKey  wire.MessageKey = 201
		regionKey wire.MessageKey = 202
	)

	info := wire.NewFormatDescriptor(infoKey, "info", catINFO, nil, nil)
	other := wire.NewFormatDescriptor(otherKey, "other", catOTHER, nil, nil)
	region := wire.NewFormatDescriptor(regionKey, "X", 0, nil, nil)

	sidecar := &wire.DecodedSidecar{
		StreamCount: 1,
		Formats: map[wire.MessageKey]*wire.FormatDescriptor{
			infoKey:   &info,
			otherKey:  &other,
			regionKey: &region,
		},
	}

	var keyBuf [4]byte
	putKey := func(data []byte, k wire.MessageKey) []byte {
		binary.LittleEndian.PutUint32(keyBuf[:], uint32(k))
		return append(data, keyBuf[:]...)
	}

	var payload []byte
	payload = putKey(payload, infoKey)
	payload = putKey(payload, wire.NamedRegionStart)
	payload = putKey(payload, regionKey)
	payload = putKey(payload, infoKey)
	payload = putKey(payload, otherKey)
	payload = putKey(payload, wire.RegionEnd)
	payload = putKey(payload, infoKey)

	var data []byte
	var hdr [wire.BlockHeaderSize]byte
	wire.PutBlockHeader(hdr[:], 0, uint64(len(payload)))
	data = append(data, hdr[:]...)
	data = append(data, payload...)

	tree, err := arena.Build(data, 1, false, sidecar)
	require.NoError(t, err)
	return tree, sidecar
}

// TestIntersectAcrossTrees builds t1 enabling only category=INFO and t2
// enabling only messages inside the named region "X"; intersecting leaves
// enabled exactly the INFO message inside X.
func TestIntersectAcrossTrees(t *testing.T) {
	tree, sidecar := buildRegionFilterFixture(t)
	formats := func(k wire.MessageKey) (*wire.FormatDescriptor, bool) {
		d, ok := sidecar.Formats[k]
		return d, ok
	}
	names := func(k wire.MessageKey) (string, bool) {
		d, ok := sidecar.Formats[k]
		if !ok {
			return "", false
		}
		return d.FormatString, true
	}

	t1 := New(tree)
	t1.FilterCategory(formats, func(old Flags, category uint32) Flags {
		if category == catINFO {
			return Enabled
		}
		return Disabled
	}, func(uint32) Action { return Apply })

	t2 := New(tree)
	flags := t2.Flags()
	for i := range flags {
		flags[i] = Disabled
	}
	var regionX uint32
	found := false
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Type == arena.NodeRegion && n.HasFormat {
			if name, ok := names(n.FormatKey); ok && name == "X" {
				regionX = uint32(i)
				found = true
			}
		}
	}
	require.True(t, found)
	for i := range tree.Nodes {
		if tree.Nodes[i].Type == arena.NodeMessage && isDescendantOf(tree, regionX, uint32(i)) {
			flags[i] = Enabled
		}
	}

	require.NoError(t, t1.Intersect(t2))

	var enabled []wire.MessageKey
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Type == arena.NodeMessage && t1.Get(uint32(i)) == Enabled {
			enabled = append(enabled, n.FormatKey)
		}
	}
	require.Equal(t, []wire.MessageKey{200}, enabled) // the single INFO message inside X
}
