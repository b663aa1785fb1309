// errs.go - typed error model shared across packages
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package errs is the typed error model shared by vm, mapping and ring.
//
// Every failure vmem can produce is one of the Op-tagged variants below, each
// carrying enough context to explain itself without needing the caller to
// inspect errno directly. Use errors.As to recover the *Error, and errs.Is
// with a Kind for coarse-grained dispatch.
package errs

import (
	"errors"
	"fmt"
	"os"
)

// Kind classifies the failure independent of which operation produced it.
type Kind int

const (
	// InvalidInput: bad arguments caught before any syscall (misaligned
	// offset, zero length, and similar).
	InvalidInput Kind = iota
	// PermissionDenied: a syscall or a library-level protection check
	// refused the request (write on a read-only file, lock without
	// privilege, upgrading a read-only Map).
	PermissionDenied
	// OutOfRange: the requested range exceeds the backing file and Resize
	// was not requested.
	OutOfRange
	// AddressSpace: the ring allocator could not reserve two adjacent
	// virtual ranges after its retry budget was exhausted.
	AddressSpace
	// Os: any other syscall failure, carrying the raw OS error.
	Os
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case PermissionDenied:
		return "permission denied"
	case OutOfRange:
		return "out of range"
	case AddressSpace:
		return "address space"
	case Os:
		return "os error"
	default:
		return "unknown"
	}
}

// Error is the single error type vmem returns. Op names the failing
// operation (e.g. "map", "unmap", "flush", "advise", "lock", "protect");
// Cause, when non-nil, is the underlying OS error.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vmem: %s: %s: %s", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("vmem: %s: %s", e.Op, e.Kind)
}

// Unwrap exposes Cause so that errors.Is/errors.As can see through to the
// underlying syscall.Errno or os error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with no underlying cause (validation failures).
func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

// Wrap builds an *Error around an OS-reported cause. A nil cause returns nil,
// so call sites can write `return errs.Wrap(Os, "map", err)` unconditionally
// after a syscall that may or may not have failed.
func Wrap(kind Kind, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Is reports whether err is a *Error of the given Kind, so callers can write
// errs.Is(err, errs.PermissionDenied) without a type switch. Kind does not
// itself implement error, so errors.Is cannot match against it directly;
// this function does the errors.As step instead.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ToIOError converts a vmem error into the closest stdlib os error, so
// callers that only understand the generic io/os contract can branch on it
// via errors.Is. Only PermissionDenied is mapped (to os.ErrPermission);
// every other error, vmem's or not, is returned unchanged.
func ToIOError(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Kind == PermissionDenied {
		return &ioError{inner: e}
	}
	return e
}

// ioError wraps *Error so that errors.Is(err, os.ErrPermission) succeeds
// without changing what Error() prints or what errors.As(err, *Error) sees.
type ioError struct{ inner *Error }

func (w *ioError) Error() string { return w.inner.Error() }

func (w *ioError) Is(target error) bool {
	return target == os.ErrPermission
}

func (w *ioError) Unwrap() error {
	return w.inner
}
