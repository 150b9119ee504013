package arena

import (
	"github.com/cockroachdb/errors"

	"github.com/TimZoet/logandload-module/internal/wire"
)

// groupNode is the pass-1 scratch record for a Stream/Region node: it
// tracks the child-count bookkeeping needed before the arena can be
// allocated.
type groupNode struct {
	key               wire.MessageKey
	hasKey            bool
	parent            uint32
	groupChildCount   uint32
	messageChildCount uint32
}

// Build runs a two-pass arena construction over data (a fully-read log
// file) using sidecar to resolve message keys to their declared payload
// size. It returns ErrMalformedLog if any block or stream cursor fails to
// land exactly on a boundary.
func Build(data []byte, streamCount int, orderingEnabled bool, formats *wire.DecodedSidecar) (*Tree, error) {
	groups := make([]groupNode, streamCount, streamCount*2)
	activeParent := make([]uint32, streamCount)
	for i := range groups {
		groups[i] = groupNode{parent: noIndex}
		activeParent[i] = uint32(i)
	}

	regionCount := 0
	messageCount := 0

	scan := func(visit func(streamIndex int, key wire.MessageKey, cursor *int) error) error {
		off := 0
		for off < len(data) {
			if off+wire.BlockHeaderSize > len(data) {
				return errors.Mark(errors.New("lal: truncated block header"), wire.ErrMalformedLog)
			}
			streamIndex, blockSize := wire.ReadBlockHeader(data[off:])
			off += wire.BlockHeaderSize
			blockEnd := off + int(blockSize)
			if blockEnd > len(data) {
				return errors.Mark(errors.New("lal: block size exceeds remaining data"), wire.ErrMalformedLog)
			}
			if int(streamIndex) >= streamCount {
				return errors.Mark(errors.Newf("lal: block references unknown stream %d", streamIndex), wire.ErrMalformedLog)
			}

			cursor := off
			for cursor < blockEnd {
				if cursor+4 > blockEnd {
					return errors.Mark(errors.New("lal: truncated message key"), wire.ErrMalformedLog)
				}
				key := wire.ReadMessageKey(data[cursor:])
				cursor += 4
				if err := visit(int(streamIndex), key, &cursor); err != nil {
					return err
				}
				if cursor > blockEnd {
					return errors.Mark(errors.New("lal: message overruns block boundary"), wire.ErrMalformedLog)
				}
			}
			if cursor != blockEnd {
				return errors.Mark(errors.New("lal: cursor did not land on block boundary"), wire.ErrMalformedLog)
			}
			off = blockEnd
		}
		if off != len(data) {
			return errors.Mark(errors.New("lal: cursor did not land on end of file"), wire.ErrMalformedLog)
		}
		return nil
	}

	// Pass 1: count.
	err := scan(func(s int, key wire.MessageKey, cursor *int) error {
		switch key {
		case wire.AnonRegionStart:
			groups[activeParent[s]].groupChildCount++
			groups = append(groups, groupNode{parent: activeParent[s]})
			activeParent[s] = uint32(len(groups) - 1)
			regionCount++
		case wire.NamedRegionStart:
			if *cursor+4 > len(data) {
				return errors.Mark(errors.New("lal: truncated named region key"), wire.ErrMalformedLog)
			}
			innerKey := wire.ReadMessageKey(data[*cursor:])
			*cursor += 4
			groups[activeParent[s]].groupChildCount++
			groups = append(groups, groupNode{parent: activeParent[s], key: innerKey, hasKey: true})
			activeParent[s] = uint32(len(groups) - 1)
			regionCount++
		case wire.RegionEnd:
			p := groups[activeParent[s]].parent
			if p == noIndex {
				return errors.Mark(errors.New("lal: unbalanced region end"), wire.ErrMalformedLog)
			}
			activeParent[s] = p
		default:
			desc, ok := formats.Formats[key]
			if !ok {
				return errors.Mark(errors.Newf("lal: unknown message key %d", key), wire.ErrMalformedLog)
			}
			if orderingEnabled {
				*cursor += 8
			}
			*cursor += desc.MessageSize
			groups[activeParent[s]].messageChildCount++
			messageCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for s, p := range activeParent {
		if p != uint32(s) {
			return nil, errors.Mark(errors.Newf("lal: stream %d ends with unbalanced regions", s), wire.ErrMalformedLog)
		}
	}

	// Pass 2: build.
	total := 1 + streamCount + regionCount + messageCount
	nodes := make([]Node, total)
	nodes[0] = Node{Type: NodeLog, Parent: noIndex, ChildCount: uint32(streamCount), FirstChild: 1}

	nextIndex := uint32(1 + streamCount)
	for i := 0; i < streamCount; i++ {
		n := &nodes[1+i]
		n.Type = NodeStream
		n.Parent = 0
		cc := groups[i].groupChildCount + groups[i].messageChildCount
		n.ChildCount = cc
		if cc > 0 {
			n.FirstChild = nextIndex
			nextIndex += cc
		} else {
			n.FirstChild = noIndex
		}
	}

	activeParent2 := make([]uint32, streamCount)
	for i := range activeParent2 {
		activeParent2[i] = uint32(1 + i)
	}
	nextGroupIndex := uint32(streamCount)
	nextSlot := make([]uint32, total) // next free child slot count per parent index

	claim := func(parent uint32) uint32 {
		n := &nodes[parent]
		slot := n.FirstChild + nextSlot[parent]
		nextSlot[parent]++
		return slot
	}

	err = scan(func(s int, key wire.MessageKey, cursor *int) error {
		switch key {
		case wire.AnonRegionStart, wire.NamedRegionStart:
			slot := claim(activeParent2[s])
			g := groups[nextGroupIndex]
			node := &nodes[slot]
			node.Type = NodeRegion
			node.Parent = activeParent2[s]
			if g.hasKey {
				node.FormatKey = g.key
				node.HasFormat = true
			}
			if key == wire.NamedRegionStart {
				*cursor += 4
			}
			cc := g.groupChildCount + g.messageChildCount
			node.ChildCount = cc
			if cc > 0 {
				node.FirstChild = nextIndex
				nextIndex += cc
			} else {
				node.FirstChild = noIndex
			}
			activeParent2[s] = slot
			nextGroupIndex++
		case wire.RegionEnd:
			activeParent2[s] = nodes[activeParent2[s]].Parent
		default:
			desc := formats.Formats[key]
			slot := claim(activeParent2[s])
			node := &nodes[slot]
			node.Type = NodeMessage
			node.Parent = activeParent2[s]
			node.FormatKey = key
			node.HasFormat = true
			node.FirstChild = noIndex
			if orderingEnabled {
				node.Index = wire.ReadOrderingIndex(data[*cursor:])
				node.HasIndex = true
				*cursor += 8
			}
			node.Data = data[*cursor : *cursor+desc.MessageSize]
			*cursor += desc.MessageSize
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if int(nextIndex) != total {
		return nil, errors.Mark(errors.Newf("lal: arena accounting mismatch: built %d of %d nodes", nextIndex, total), wire.ErrMalformedLog)
	}
	if int(nextGroupIndex) != len(groups) {
		return nil, errors.Mark(errors.New("lal: group accounting mismatch"), wire.ErrMalformedLog)
	}

	return &Tree{Nodes: nodes, StreamCount: streamCount, OrderingEnabled: orderingEnabled}, nil
}
