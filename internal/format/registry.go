// Package format implements the process-wide FormatRegistry: the map from
// MessageKey to FormatDescriptor that backs both the live logging pipeline
// (Stream.Message registers its call site's format on first use) and the
// sidecar written at Log shutdown.
package format

import (
	"slices"
	"sync"

	"github.com/cockroachdb/swiss"

	"github.com/TimZoet/logandload-module/internal/wire"
)

// Registry is a process-wide map from MessageKey to FormatDescriptor.
// Registration is idempotent per key: a second Register call for a key
// already present is a no-op.
//
// The backing store is a cockroachdb/swiss.Map rather than a built-in Go
// map. It is consulted on registration, Lookup and Snapshot; the analyzer
// does not read it, and decodes against the sidecar's own format map.
type Registry struct {
	mu    sync.Mutex
	table *swiss.Map[wire.MessageKey, *wire.FormatDescriptor]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{table: swiss.New[wire.MessageKey, *wire.FormatDescriptor](64)}
}

// Default is the process-wide FormatRegistry: call sites register into it
// exactly once (guarded by their own Format's sync.Once), regardless of
// which Log eventually reads it back at shutdown. A single global table is
// shared across every Log instance in the process rather than one table
// per instance.
var Default = New()

// Register records desc under its Key, unless a descriptor with that key
// already exists, in which case the call is a no-op. It returns the
// descriptor now stored under the key (either desc, or whatever was
// registered first).
func (r *Registry) Register(desc wire.FormatDescriptor) *wire.FormatDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.table.Get(desc.Key); ok {
		return existing
	}
	d := desc
	r.table.Put(desc.Key, &d)
	return &d
}

// Lookup returns the descriptor registered under key, if any.
func (r *Registry) Lookup(key wire.MessageKey) (*wire.FormatDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Get(key)
}

// Snapshot returns a stable, key-sorted copy of every registered
// descriptor, suitable for deterministic sidecar serialization.
func (r *Registry) Snapshot() []wire.FormatDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]wire.FormatDescriptor, 0, r.table.Len())
	r.table.All(func(_ wire.MessageKey, v *wire.FormatDescriptor) bool {
		out = append(out, *v)
		return true
	})
	slices.SortFunc(out, func(a, b wire.FormatDescriptor) int {
		if a.Key < b.Key {
			return -1
		}
		if a.Key > b.Key {
			return 1
		}
		return 0
	})
	return out
}

// Len reports the number of registered formats.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Len()
}
