package flagtree

import "github.com/TimZoet/logandload-module/internal/arena"

// Expand and Reduce both use a read-old/write-scratch discipline rather
// than a cascading same-buffer read/write: every sibling window is computed
// from the flags as they stood before this call, then bulk-copied back, so
// neither operation's result depends on child visitation order within a
// single call.

// Expand enables a child at position i if any sibling in [i-left, i+right]
// (clipped to the parent's child range) was already Enabled, for every
// Stream or Region node whose own flag is Enabled. Stream nodes' own flags
// are never modified.
func (t *Tree) Expand(left, right int) {
	t.convolve(left, right, func(anyMatch bool, old Flags) Flags {
		if anyMatch {
			return Enabled
		}
		return old
	}, Enabled)
}

// Reduce disables a child at position i if any sibling in [i-left, i+right]
// is currently Disabled.
func (t *Tree) Reduce(left, right int) {
	t.convolve(left, right, func(anyMatch bool, old Flags) Flags {
		if anyMatch {
			return Disabled
		}
		return old
	}, Disabled)
}

// convolve walks every Stream/Region node whose own flag is Enabled and
// recomputes its children's flags into a scratch buffer, looking for
// matchTarget among each child's [i-left, i+right] window in the old
// flags, before bulk-copying the scratch values back.
func (t *Tree) convolve(left, right int, next func(anyMatch bool, old Flags) Flags, matchTarget Flags) {
	scratch := make([]Flags, 0, 64)

	visit := func(i uint32) {
		n := &t.nodes.Nodes[i]
		if n.Type != arena.NodeStream && n.Type != arena.NodeRegion {
			return
		}
		if t.flags[i] != Enabled || n.ChildCount == 0 {
			return
		}

		first, count := n.FirstChild, n.ChildCount
		scratch = scratch[:0]
		for c := uint32(0); c < count; c++ {
			old := t.flags[first+c]
			anyMatch := false
			lo := clip(int(c)-left, 0, int(count)-1)
			hi := clip(int(c)+right, 0, int(count)-1)
			for w := lo; w <= hi; w++ {
				if t.flags[first+uint32(w)] == matchTarget {
					anyMatch = true
					break
				}
			}
			scratch = append(scratch, next(anyMatch, old))
		}
		copy(t.flags[first:first+count], scratch)
	}

	for i := range t.nodes.Nodes {
		visit(uint32(i))
	}
}
