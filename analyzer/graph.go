package analyzer

import (
	"fmt"
	"io"

	"github.com/TimZoet/logandload-module/flagtree"
	"github.com/TimZoet/logandload-module/internal/arena"
)

// GraphSink accepts node/edge creation calls with no assumption about the
// destination format, so callers can render a tree to DOT, an in-memory
// graph structure, or anything else that fits the same shape.
type GraphSink interface {
	AddNode(id, label string)
	AddEdge(from, to string)
}

// DotWriter is the reference GraphSink implementation, grounded on pebble's
// tool/lsm.go (walks internal DB structures and renders a text report) but
// adapted to emit Graphviz digraph syntax instead of a plain report.
type DotWriter struct {
	w   io.Writer
	err error
}

// NewDotWriter wraps w and writes the digraph preamble.
func NewDotWriter(w io.Writer) *DotWriter {
	d := &DotWriter{w: w}
	d.printf("digraph lal {\n")
	return d
}

func (d *DotWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *DotWriter) AddNode(id, label string) {
	d.printf("  %q [label=%q];\n", id, label)
}

func (d *DotWriter) AddEdge(from, to string) {
	d.printf("  %q -> %q;\n", from, to)
}

// Close writes the closing brace and returns any write error encountered.
func (d *DotWriter) Close() error {
	d.printf("}\n")
	return d.err
}

// WriteGraph walks tree in pre-order, emitting a node for every arena entry
// whose flag is Enabled and an edge from its parent to each visited node,
// into sink. Only nodes reachable through an unbroken chain of Enabled
// ancestors are emitted, so a filtered-out subtree disappears from the
// rendered graph entirely rather than appearing disconnected.
func (a *Analyzer) WriteGraph(sink GraphSink, tree *flagtree.Tree) {
	nodes := a.tree.Nodes
	ids := make([]string, len(nodes))

	a.tree.Walk(0, func(i uint32) arena.Action {
		if tree.Get(i) != flagtree.Enabled {
			return arena.Terminate
		}
		n := &nodes[i]
		ids[i] = fmt.Sprintf("n%d", i)
		sink.AddNode(ids[i], a.nodeLabel(n))
		if n.HasParent() && ids[n.Parent] != "" {
			sink.AddEdge(ids[n.Parent], ids[i])
		}
		return arena.Apply
	})
}

func (a *Analyzer) nodeLabel(n *arena.Node) string {
	switch n.Type {
	case arena.NodeLog:
		return "log"
	case arena.NodeStream:
		return "stream"
	case arena.NodeRegion:
		if n.HasFormat {
			if name, ok := a.FormatName(n.FormatKey); ok {
				return "region:" + name
			}
		}
		return "region"
	case arena.NodeMessage:
		if desc, ok := a.Format(n.FormatKey); ok {
			return desc.FormatString
		}
		return fmt.Sprintf("message:%d", n.FormatKey)
	default:
		return "?"
	}
}
