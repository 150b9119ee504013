// Package flagtree implements the parallel per-node selection array over an
// internal/arena.Tree: filtering by stream/category/region/message,
// sibling-window convolution (expand/reduce), and set algebra between two
// trees built from the same analyzer.
package flagtree

import (
	"github.com/TimZoet/logandload-module/internal/arena"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// Tree is a Flags array parallel to an arena.Tree's Nodes, all Enabled
// initially. Two Trees built from the same *arena.Tree pointer are
// considered to belong to the same analyzer for Union/Intersect purposes.
type Tree struct {
	nodes *arena.Tree
	flags []Flags
}

// New returns a Tree over nodes with every flag Enabled.
func New(nodes *arena.Tree) *Tree {
	flags := make([]Flags, len(nodes.Nodes))
	for i := range flags {
		flags[i] = Enabled
	}
	return &Tree{nodes: nodes, flags: flags}
}

// Flags returns the tree's current flag array, indexed by arena index.
func (t *Tree) Flags() []Flags { return t.flags }

// Get returns the flag at arena index i.
func (t *Tree) Get(i uint32) Flags { return t.flags[i] }

func (t *Tree) sameAnalyzer(other *Tree) bool { return t.nodes == other.nodes }

// defaultAction is the descent policy category/region/message filters use
// unless the caller overrides it: terminate descent under an already
// disabled node, otherwise apply the predicate.
func (t *Tree) defaultAction(i uint32) Action {
	if t.flags[i] == Disabled {
		return Terminate
	}
	return Apply
}

// FilterStream applies f(oldFlags, streamIndex) to every Stream node
// without descending into children.
func (t *Tree) FilterStream(f func(old Flags, streamIndex int) Flags) {
	root := &t.nodes.Nodes[0]
	for i := uint32(0); i < root.ChildCount; i++ {
		idx := root.FirstChild + i
		t.flags[idx] = f(t.flags[idx], int(i))
	}
}

// FilterCategory applies f(oldFlags, category) to every Message node whose
// format is registered with a category, using action (or the default
// action if action is nil) to decide whether to keep walking under nodes
// that don't match.
func (t *Tree) FilterCategory(formats func(wire.MessageKey) (*wire.FormatDescriptor, bool), f func(old Flags, category uint32) Flags, action func(i uint32) Action) {
	if action == nil {
		action = t.defaultAction
	}
	t.nodes.Walk(0, func(i uint32) arena.Action {
		n := &t.nodes.Nodes[i]
		act := action(i)
		if n.Type == arena.NodeMessage && act == Apply {
			if desc, ok := formats(n.FormatKey); ok {
				t.flags[i] = f(t.flags[i], desc.Category)
			}
		}
		return arenaAction(act)
	})
}

// FilterRegion applies f(oldFlags, hasName, name) to every Region node.
func (t *Tree) FilterRegion(names func(wire.MessageKey) (string, bool), f func(old Flags, hasName bool, name string) Flags, action func(i uint32) Action) {
	if action == nil {
		action = t.defaultAction
	}
	t.nodes.Walk(0, func(i uint32) arena.Action {
		n := &t.nodes.Nodes[i]
		act := action(i)
		if n.Type == arena.NodeRegion && act == Apply {
			if n.HasFormat {
				name, _ := names(n.FormatKey)
				t.flags[i] = f(t.flags[i], true, name)
			} else {
				t.flags[i] = f(t.flags[i], false, "")
			}
		}
		return arenaAction(act)
	})
}

// MessageMatcher describes a filterMessage query: a format's messageHash
// (identity independent of parameter types) plus a category and a
// positional parameter-key pattern, where ParameterKey(0) is a wildcard.
type MessageMatcher struct {
	MessageHash wire.MessageKey
	Category    uint32
	Parameters  []wire.ParameterKey
}

// FilterMessage applies f to every Message node whose registered format
// matches m: same messageHash, same category, and a positional parameter
// match (see wire.FormatDescriptor.Matches). len(m.Parameters) must equal
// the matched descriptor's parameter count; a zero ParameterKey at a given
// position matches any value there.
func (t *Tree) FilterMessage(formats func(wire.MessageKey) (*wire.FormatDescriptor, bool), m MessageMatcher, f func(old Flags) Flags, action func(i uint32) Action) {
	if action == nil {
		action = t.defaultAction
	}
	t.nodes.Walk(0, func(i uint32) arena.Action {
		n := &t.nodes.Nodes[i]
		act := action(i)
		if n.Type == arena.NodeMessage && act == Apply {
			if desc, ok := formats(n.FormatKey); ok &&
				desc.MessageHash == m.MessageHash &&
				desc.Category == m.Category &&
				desc.Matches(m.Parameters) {
				t.flags[i] = f(t.flags[i])
			}
		}
		return arenaAction(act)
	})
}

func arenaAction(a Action) arena.Action {
	switch a {
	case Apply:
		return arena.Apply
	case Terminate:
		return arena.Terminate
	default:
		return arena.Skip
	}
}
