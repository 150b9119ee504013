package flagtree

import "github.com/TimZoet/logandload-module/internal/wire"

// ErrForeignTree is returned by Union and Intersect when the two trees
// reference different analyzers. It is the same sentinel internal/wire
// marks its own errors with, kept as an alias here so callers of this
// package's public API don't need to import internal/wire just to check it.
var ErrForeignTree = wire.ErrForeignTree
