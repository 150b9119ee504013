// Package analyzer is the offline companion to the logging pipeline: it
// reads a closed log file plus its format sidecar, builds the node arena,
// and hands out flagtree.Tree views over it.
package analyzer

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/TimZoet/logandload-module/internal/arena"
	"github.com/TimZoet/logandload-module/internal/format"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// Analyzer owns a decoded log's node arena and its format table, and is
// the shared identity flagtree.Tree instances compare against for
// Union/Intersect's same-analyzer requirement.
type Analyzer struct {
	tree    *arena.Tree
	formats *wire.DecodedSidecar
}

// Read loads path and path+".fmt", decodes the sidecar, and builds the node
// arena. The returned Analyzer owns copies of the file contents; the
// backing byte slices are not mutated after this call returns.
func Read(path string) (*Analyzer, error) {
	logBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "lal: read log %s", path), wire.ErrIoRead)
	}

	sidecarPath := path + ".fmt"
	sf, err := os.Open(sidecarPath)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "lal: open sidecar %s", sidecarPath), wire.ErrIoOpen)
	}
	defer sf.Close()

	return read(logBytes, sf)
}

// ReadFrom is the seam Read delegates to after opening files, exposed
// directly for tests that substitute in-memory readers instead of touching
// the filesystem.
func ReadFrom(logBytes []byte, sidecar io.Reader) (*Analyzer, error) {
	return read(logBytes, sidecar)
}

func read(logBytes []byte, sidecar io.Reader) (*Analyzer, error) {
	decoded, err := wire.DecodeSidecar(sidecar, format.DefaultParameterTypes.Size)
	if err != nil {
		return nil, err
	}

	tree, err := arena.Build(logBytes, int(decoded.StreamCount), decoded.OrderingEnabled, decoded)
	if err != nil {
		return nil, err
	}

	return &Analyzer{tree: tree, formats: decoded}, nil
}

// Nodes returns the built node arena.
func (a *Analyzer) Nodes() []arena.Node { return a.tree.Nodes }

// StreamCount reports how many streams the log declares.
func (a *Analyzer) StreamCount() int { return a.tree.StreamCount }

// OrderingEnabled reports whether messages carry a global ordering index.
func (a *Analyzer) OrderingEnabled() bool { return a.tree.OrderingEnabled }

// Format resolves a MessageKey to its descriptor, for callers building
// flagtree filters or pretty-printers.
func (a *Analyzer) Format(key wire.MessageKey) (*wire.FormatDescriptor, bool) {
	d, ok := a.formats.Formats[key]
	return d, ok
}

// FormatName resolves a named region's inner key to its declared format
// string, used by flagtree.Tree.FilterRegion.
func (a *Analyzer) FormatName(key wire.MessageKey) (string, bool) {
	d, ok := a.formats.Formats[key]
	if !ok {
		return "", false
	}
	return d.FormatString, true
}

// ArenaTree returns the node arena flagtree.New builds a Tree over.
func (a *Analyzer) ArenaTree() *arena.Tree { return a.tree }
