package format

import (
	"sync"

	"github.com/TimZoet/logandload-module/internal/wire"
)

// ParameterTypeRegistry maps a ParameterKey to the fixed byte width of the
// Go type it was derived from. Unlike FormatRegistry, which every process
// populates identically from the log side, this registry only needs to be
// populated by whichever binary is doing offline analysis — it must import
// (or otherwise register) every parameter type that appears in the log it
// is about to read.
type ParameterTypeRegistry struct {
	mu    sync.Mutex
	sizes map[wire.ParameterKey]int
}

// NewParameterTypeRegistry returns an empty registry.
func NewParameterTypeRegistry() *ParameterTypeRegistry {
	return &ParameterTypeRegistry{sizes: map[wire.ParameterKey]int{}}
}

// Register records that key identifies a fixed-width parameter type of the
// given size, idempotently.
func (r *ParameterTypeRegistry) Register(key wire.ParameterKey, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sizes[key]; !ok {
		r.sizes[key] = size
	}
}

// Size resolves key to its byte width, ok is false if key was never
// registered.
func (r *ParameterTypeRegistry) Size(key wire.ParameterKey) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sizes[key]
	return s, ok
}

// DefaultParameterTypes is the process-wide registry logandload.ParameterType
// populates and analyzer.Read consults by default.
var DefaultParameterTypes = NewParameterTypeRegistry()
