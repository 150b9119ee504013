package logandload

import (
	"reflect"
	"unsafe"

	"github.com/TimZoet/logandload-module/internal/format"
	"github.com/TimZoet/logandload-module/internal/wire"
)

// ParameterType derives the ParameterKey for T and registers its fixed byte
// width against the process-wide parameter type registry. Call it once, at
// package scope, for every parameter type a Format uses:
//
//	var floatKey, floatSize = logandload.ParameterType[float64]()
//	var fmtTemp = logandload.NewFormat("temp={}", catSensor,
//	    []wire.ParameterKey{floatKey}, []int{floatSize})
//
// Any binary that analyzes a log containing this parameter type must also
// call ParameterType[T]() for it (or link a package that does) so the
// analyzer can resolve the key back to a byte width; otherwise decoding the
// sidecar fails with ErrUnregisteredParameter.
func ParameterType[T any]() (wire.ParameterKey, int) {
	var zero T
	t := reflect.TypeOf(zero)
	key := wire.HashParameterType(t)
	size := int(unsafe.Sizeof(zero))
	format.DefaultParameterTypes.Register(key, size)
	return key, size
}
