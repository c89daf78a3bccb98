package aee

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// Error is a structured hexagonrpc error with call context, a
// peer-visible result code, and kernel errno mapping.
type Error struct {
	Op     string        // Operation that failed (e.g. "INVOKE", "LISTENER_NEXT")
	Handle uint32        // Remote handle (0 if not applicable)
	Method int64         // Method id (-1 if not applicable)
	Code   Code          // Peer-visible result code
	Errno  syscall.Errno // Kernel errno (0 if not applicable)
	Msg    string        // Human-readable message
	Inner  error         // Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Handle != 0 {
		parts = append(parts, fmt.Sprintf("handle=%d", e.Handle))
	}

	if e.Method >= 0 {
		parts = append(parts, fmt.Sprintf("method=%d", e.Method))
	}

	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}

	if len(parts) > 0 {
		return fmt.Sprintf("hexagonrpc: %s (%s)", msg, strings.Join(parts, " "))
	}

	return fmt.Sprintf("hexagonrpc: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support by result code
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// NewError creates a new structured error
func NewError(op string, code Code, msg string) *Error {
	return &Error{
		Op:     op,
		Method: -1,
		Code:   code,
		Msg:    msg,
	}
}

// NewErrorWithErrno creates a new structured error from a kernel errno
func NewErrorWithErrno(op string, code Code, errno syscall.Errno) *Error {
	return &Error{
		Op:     op,
		Method: -1,
		Code:   code,
		Errno:  errno,
		Msg:    errno.Error(),
	}
}

// NewMethodError creates an error scoped to one method of one handle
func NewMethodError(op string, handle uint32, method int64, code Code, msg string) *Error {
	return &Error{
		Op:     op,
		Handle: handle,
		Method: method,
		Code:   code,
		Msg:    msg,
	}
}

// WrapError wraps an existing error with hexagonrpc context
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	// Already structured: keep the context, update the operation.
	if ae, ok := inner.(*Error); ok {
		return &Error{
			Op:     op,
			Handle: ae.Handle,
			Method: ae.Method,
			Code:   ae.Code,
			Errno:  ae.Errno,
			Msg:    ae.Msg,
			Inner:  ae.Inner,
		}
	}

	if errno, ok := inner.(syscall.Errno); ok {
		return &Error{
			Op:     op,
			Method: -1,
			Code:   MapErrno(errno),
			Errno:  errno,
			Msg:    errno.Error(),
			Inner:  inner,
		}
	}

	return &Error{
		Op:     op,
		Method: -1,
		Code:   EFailed,
		Msg:    inner.Error(),
		Inner:  inner,
	}
}

// MapErrno maps a kernel errno to the closest AEE result code
func MapErrno(errno syscall.Errno) Code {
	switch errno {
	case syscall.EINVAL, syscall.E2BIG, syscall.EFAULT:
		return EBadParm
	case syscall.ENOSYS, syscall.EOPNOTSUPP:
		return EUnsupported
	case syscall.ENOMEM, syscall.ENOSPC:
		return ENoMemory
	case syscall.ENOENT:
		return EResourceNotFound
	case syscall.EBUSY:
		return EItemBusy
	default:
		return EFailed
	}
}

// IsCode checks if an error carries a specific result code
func IsCode(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// IsErrno checks if an error carries a specific kernel errno
func IsErrno(err error, errno syscall.Errno) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Errno == errno
	}
	return false
}
