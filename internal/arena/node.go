// Package arena implements the two-pass Node arena construction: a flat,
// contiguous []Node built from a log file plus its decoded sidecar. Nodes
// address their parent and first child by arena index rather than raw
// pointer, grounded on arenaskl's own offset-based (not pointer-based) node
// addressing, so the arena stays relocatable and safe against reallocation.
package arena

import "github.com/TimZoet/logandload-module/internal/wire"

// NodeType discriminates the four kinds of node the arena holds.
type NodeType uint8

const (
	NodeLog NodeType = iota
	NodeStream
	NodeRegion
	NodeMessage
)

// noIndex marks an absent parent/firstChild reference. The Log node
// is the only node with no parent, and leaf nodes have no children.
const noIndex = ^uint32(0)

// Node is one entry in the arena. FormatKey, Data, and Index are only
// meaningful for NodeMessage (Data/Index) and NodeMessage/NodeRegion
// (FormatKey, for a named region's key).
type Node struct {
	Type       NodeType
	FormatKey  wire.MessageKey // valid for NodeMessage, and NodeRegion when named
	HasFormat  bool
	Index      uint64 // ordering index, valid when ordering is enabled
	HasIndex   bool
	Parent     uint32 // arena index; noIndex for the root
	FirstChild uint32 // arena index of first child; noIndex if childless
	ChildCount uint32
	Data       []byte // parameter payload, valid for NodeMessage
}

// HasParent reports whether n has a parent (false only for the Log node).
func (n *Node) HasParent() bool { return n.Parent != noIndex }

// HasChildren reports whether n has at least one child.
func (n *Node) HasChildren() bool { return n.ChildCount > 0 }

// Tree is the built Node arena plus the stream/format metadata needed to
// interpret it, returned by Build.
type Tree struct {
	Nodes           []Node
	StreamCount     int
	OrderingEnabled bool
}

// Child returns the i'th child of n (0 <= i < n.ChildCount).
func (t *Tree) Child(n *Node, i uint32) *Node {
	return &t.Nodes[n.FirstChild+i]
}

// Children returns the contiguous slice of n's children.
func (t *Tree) Children(n *Node) []Node {
	if n.ChildCount == 0 {
		return nil
	}
	return t.Nodes[n.FirstChild : n.FirstChild+n.ChildCount]
}

// ChildIndices returns the arena index range [first, first+count) of n's
// children, for callers that need indices rather than a slice (FlagTree's
// parallel array, traversal).
func (t *Tree) ChildIndices(n *Node) (first, count uint32) {
	return n.FirstChild, n.ChildCount
}
