package flagtree

import "golang.org/x/exp/constraints"

// clip constrains v to [lo, hi], used by convolve to keep a sibling window
// inside a parent's child range without a chain of if statements at each
// call site.
func clip[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
