// span.go - read-only and mutable views over mapped memory
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

// Package span provides borrowed, non-owning views over mapped memory: Span
// for read-only access, SpanMut for read-write. Neither type owns the
// memory it points at — see package mapping for the owning handle whose
// Close/Drop actually unmaps the range.
package span

import (
	"unsafe"

	"github.com/opencoff/vmem/errs"
)

// Span is an immutable view over [ptr, ptr+len). ptr is always page-aligned;
// len may be any non-negative value not exceeding the underlying mapping.
type Span struct {
	ptr uintptr
	len int
}

// SpanMut is the mutable counterpart of Span.
type SpanMut struct {
	Span
}

// New wraps an address/length pair. Callers obtain ptr/len from package vm
// or package mapping; span itself performs no validation beyond bounds
// checks on access.
func New(ptr uintptr, length int) Span {
	return Span{ptr: ptr, len: length}
}

// NewMut wraps an address/length pair for mutable access.
func NewMut(ptr uintptr, length int) SpanMut {
	return SpanMut{Span{ptr: ptr, len: length}}
}

// Len returns the span's length in bytes.
func (s Span) Len() int { return s.len }

// Addr returns the span's base address.
func (s Span) Addr() uintptr { return s.ptr }

// Bytes exposes the span as a []byte. The slice is valid only as long as
// the owning Map/MapMut has not been closed.
func (s Span) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), s.len)
}

// Bytes exposes the span as a mutable []byte.
func (s SpanMut) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), s.len)
}

// At returns the byte at offset off, bounds-checked.
func (s Span) At(off int) (byte, error) {
	if off < 0 || off >= s.len {
		return 0, errs.New(errs.InvalidInput, "at")
	}
	return *(*byte)(unsafe.Pointer(s.ptr + uintptr(off))), nil
}

// SetAt writes the byte at offset off, bounds-checked.
func (s SpanMut) SetAt(off int, v byte) error {
	if off < 0 || off >= s.len {
		return errs.New(errs.InvalidInput, "set_at")
	}
	*(*byte)(unsafe.Pointer(s.ptr + uintptr(off))) = v
	return nil
}

func checkRange[T any](s Span, off int) error {
	var zero T
	sz := int(unsafe.Sizeof(zero))
	if off < 0 || off+sz > s.len {
		return errs.New(errs.InvalidInput, "range")
	}
	return nil
}

// ReadUnaligned reads a T starting at byte offset off, without requiring
// off to satisfy T's natural alignment.
func ReadUnaligned[T any](s Span, off int) (T, error) {
	var zero T
	if err := checkRange[T](s, off); err != nil {
		return zero, err
	}
	var v T
	src := unsafe.Pointer(s.ptr + uintptr(off))
	copyMem(unsafe.Pointer(&v), src, unsafe.Sizeof(v))
	return v, nil
}

// WriteUnaligned writes v at byte offset off, without requiring off to
// satisfy T's natural alignment.
func WriteUnaligned[T any](s SpanMut, off int, v T) error {
	if err := checkRange[T](s.Span, off); err != nil {
		return err
	}
	dst := unsafe.Pointer(s.ptr + uintptr(off))
	copyMem(dst, unsafe.Pointer(&v), unsafe.Sizeof(v))
	return nil
}
