package logandload

import (
	"sync"

	"github.com/TimZoet/logandload-module/internal/format"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// Format is a call-site handle for one message shape: a format string, a
// category, and an ordered parameter key/size list. Its MessageKey is
// derived at runtime on first use and cached thereafter. Registering the
// same *Format twice (across streams, or across a region start and its own
// body) is free after the first call.
//
// A Format is normally stored in a package-level variable at the call site
// that emits it, so the key derivation and format registration only ever
// happen once per process.
type Format struct {
	formatString   string
	category       uint32
	parameterKeys  []wire.ParameterKey
	parameterSizes []int
	messageSize    int

	once sync.Once
	key  wire.MessageKey
}

// NewFormat declares a format type. len(parameterKeys) and
// len(parameterSizes) must both equal the number of "{}" placeholders in
// formatString, and correspond positionally.
func NewFormat(formatString string, category uint32, parameterKeys []wire.ParameterKey, parameterSizes []int) *Format {
	if n := wire.CountParameters(formatString); n != len(parameterKeys) || n != len(parameterSizes) {
		panic("logandload: format string placeholder count does not match parameter key/size count")
	}
	size := 0
	for _, s := range parameterSizes {
		size += s
	}
	return &Format{
		formatString:   formatString,
		category:       category,
		parameterKeys:  parameterKeys,
		parameterSizes: parameterSizes,
		messageSize:    size,
	}
}

// Category reports the format's message category, used by the Category
// predicate at the emit site before any hashing or registration happens.
func (f *Format) Category() uint32 { return f.category }

// MessageSize is the number of parameter payload bytes a message using this
// format must carry.
func (f *Format) MessageSize() int { return f.messageSize }

// register derives f's MessageKey and records its FormatDescriptor in reg,
// exactly once, then returns the (cached) key. Safe for concurrent use by
// multiple streams sharing the same Format.
func (f *Format) register(reg *format.Registry) wire.MessageKey {
	f.once.Do(func() {
		f.key = wire.HashMessage(f.formatString, f.category, f.parameterKeys)
		desc := wire.NewFormatDescriptor(f.key, f.formatString, f.category, f.parameterKeys, f.parameterSizes)
		reg.Register(desc)
	})
	return f.key
}
