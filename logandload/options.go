package logandload

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Log. The zero value is not directly usable; call
// EnsureDefaults or use DefaultOptions, mirroring pebble.Options's
// EnsureDefaults convention.
type Options struct {
	// GlobalBufferSize is the size in bytes of each half of the
	// Consolidator/Writer global double buffer.
	GlobalBufferSize int

	// OrderingEnabled, if true, makes every user message carry a
	// monotonically increasing u64 index assigned atomically at emission
	// time.
	OrderingEnabled bool

	// Category gates which messages, regions, and source-location entries
	// are emitted. Defaults to AllCategories{}.
	Category Category

	// WriterOpener opens the destination for the log file (and, with the
	// ".fmt" suffix appended by the caller, the sidecar). Tests substitute
	// an in-memory implementation so the pipeline never touches a real
	// filesystem; this plays the same seam role as pebble's vfs.FS.
	WriterOpener func(path string) (io.WriteCloser, error)

	// MetricsRegisterer receives the pipeline's Prometheus collectors. With a
	// nil Registerer the collectors still count but are not registered
	// anywhere.
	MetricsRegisterer prometheus.Registerer
}

// DefaultOptions returns an Options with every field set to its default.
func DefaultOptions() *Options {
	return &Options{
		GlobalBufferSize: 1 << 20, // 1 MiB
		OrderingEnabled:  false,
		Category:         AllCategories{},
		WriterOpener: func(path string) (io.WriteCloser, error) {
			return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		},
	}
}

// EnsureDefaults returns o with every zero-valued field replaced by its
// default, allocating a fresh Options if o is nil.
func (o *Options) EnsureDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	if o.GlobalBufferSize <= 0 {
		o.GlobalBufferSize = d.GlobalBufferSize
	}
	if o.Category == nil {
		o.Category = d.Category
	}
	if o.WriterOpener == nil {
		o.WriterOpener = d.WriterOpener
	}
	return o
}
