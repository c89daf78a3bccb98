package hexagonrpc

import (
	"syscall"

	"github.com/linux-msm/hexagonrpc/internal/aee"
)

// ResultCode is a peer-visible 32-bit AEE result code.
type ResultCode = aee.Code

// Error is the structured hexagonrpc error carrying operation context,
// the AEE result code, and the kernel errno when one is involved.
type Error = aee.Error

// Peer-visible result codes used symbolically by the engine.
const (
	OK           = aee.OK
	EFailed      = aee.EFailed
	ENoMemory    = aee.ENoMemory
	EBadParm     = aee.EBadParm
	EUnsupported = aee.EUnsupported

	// NoSuchInterface is the dlopen-style "not found" code remotectl
	// open reports for unknown interface names.
	NoSuchInterface = aee.NoSuchInterface
)

// NewError creates a new structured error
func NewError(op string, code ResultCode, msg string) *Error {
	return aee.NewError(op, code, msg)
}

// WrapError wraps an existing error with hexagonrpc context. Kernel
// errnos keep their identity and map to the closest result code.
func WrapError(op string, inner error) *Error {
	return aee.WrapError(op, inner)
}

// IsCode checks if an error carries a specific result code
func IsCode(err error, code ResultCode) bool {
	return aee.IsCode(err, code)
}

// IsErrno checks if an error carries a specific kernel errno
func IsErrno(err error, errno syscall.Errno) bool {
	return aee.IsErrno(err, errno)
}
