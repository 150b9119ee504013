package wire

import "github.com/cockroachdb/errors"

// Sentinel error kinds. Every wrapped error created in this module is
// errors.Mark'd with one of these so callers can test with errors.Is
// regardless of the wrapping added along the way.
var (
	ErrIoOpen                = errors.New("lal: failed to open file")
	ErrIoRead                = errors.New("lal: failed to read file")
	ErrIoWrite               = errors.New("lal: failed to write file")
	ErrMalformedLog          = errors.New("lal: malformed log")
	ErrUnregisteredParameter = errors.New("lal: unregistered parameter key")
	ErrDuplicateFormat       = errors.New("lal: duplicate format key")
	ErrForeignTree           = errors.New("lal: flag tree does not belong to this analyzer")
	ErrParameterMismatch     = errors.New("lal: parameter type or index mismatch")
)
