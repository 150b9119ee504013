package logandload_test

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/cockroachdb/metamorphic"
	"github.com/stretchr/testify/require"

	"github.com/TimZoet/logandload-module/analyzer"
	"github.com/TimZoet/logandload-module/internal/arena"
	"github.com/TimZoet/logandload-module/internal/wire"
	"github.com/TimZoet/logandload-module/logandload"
)

type metaOp int

const (
	opMessage metaOp = iota
	opBeginRegion
	opEndRegion
)

var metaKey, metaSize = logandload.ParameterType[uint32]()
var metaFormat = logandload.NewFormat("v={}", 0, []wire.ParameterKey{metaKey}, []int{metaSize})

// TestMetamorphicRandomizedSequence drives a weighted-random sequence of
// message/region operations across several streams and checks the arena
// the analyzer reconstructs against a plain reference model recording, per
// stream, the exact sequence of message/region-open/region-close events it
// issued.
func TestMetamorphicRandomizedSequence(t *testing.T) {
	const streams = 3
	const steps = 400

	rng := rand.New(rand.NewSource(1))
	nextOp := metamorphic.Weighted[metaOp]{
		{Item: opMessage, Weight: 6},
		{Item: opBeginRegion, Weight: 2},
		{Item: opEndRegion, Weight: 2},
	}.RandomDeck(rng)

	fs := newMemFS()
	opts := logandload.DefaultOptions()
	opts.GlobalBufferSize = 512
	opts.WriterOpener = fs.open

	log, err := logandload.Open("meta.lal", opts)
	require.NoError(t, err)

	type event struct {
		kind  metaOp
		value uint32
	}
	model := make([][]event, streams)
	depth := make([]int, streams)
	handles := make([]*logandload.Stream, streams)
	var regions [][]*logandload.Region
	for i := range handles {
		handles[i] = log.CreateStream(256)
		regions = append(regions, nil)
	}

	seq := uint32(0)
	for i := 0; i < steps; i++ {
		s := rng.Intn(streams)
		op := nextOp()
		if op == opEndRegion && depth[s] == 0 {
			op = opMessage
		}
		switch op {
		case opMessage:
			var payload [4]byte
			binary.LittleEndian.PutUint32(payload[:], seq)
			handles[s].Message(metaFormat, payload[:])
			model[s] = append(model[s], event{kind: opMessage, value: seq})
			seq++
		case opBeginRegion:
			r := handles[s].BeginRegion()
			regions[s] = append(regions[s], r)
			depth[s]++
			model[s] = append(model[s], event{kind: opBeginRegion})
		case opEndRegion:
			last := len(regions[s]) - 1
			regions[s][last].End()
			regions[s] = regions[s][:last]
			depth[s]--
			model[s] = append(model[s], event{kind: opEndRegion})
		}
	}
	for s := range regions {
		for len(regions[s]) > 0 {
			last := len(regions[s]) - 1
			regions[s][last].End()
			regions[s] = regions[s][:last]
			model[s] = append(model[s], event{kind: opEndRegion})
		}
	}

	require.NoError(t, log.Close())

	a, err := analyzer.ReadFrom(fs.bytes("meta.lal"), bytes.NewReader(fs.bytes("meta.lal.fmt")))
	require.NoError(t, err)
	require.Equal(t, streams, a.StreamCount())

	nodes := a.Nodes()
	logNode := &nodes[0]
	require.EqualValues(t, streams, logNode.ChildCount)

	for s := 0; s < streams; s++ {
		streamNode := &nodes[logNode.FirstChild+uint32(s)]
		require.Equal(t, arena.NodeStream, streamNode.Type)

		var got []event
		var walk func(children []arena.Node)
		walk = func(children []arena.Node) {
			for i := range children {
				n := &children[i]
				switch n.Type {
				case arena.NodeMessage:
					got = append(got, event{kind: opMessage, value: binary.LittleEndian.Uint32(n.Data)})
				case arena.NodeRegion:
					got = append(got, event{kind: opBeginRegion})
					if n.ChildCount > 0 {
						walk(nodes[n.FirstChild : n.FirstChild+n.ChildCount])
					}
					got = append(got, event{kind: opEndRegion})
				}
			}
		}
		if streamNode.ChildCount > 0 {
			walk(nodes[streamNode.FirstChild : streamNode.FirstChild+streamNode.ChildCount])
		}

		require.Equal(t, model[s], got, "stream %d event sequence diverged", s)
	}
}
