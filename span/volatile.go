// volatile.go - volatile-semantics accessors over a mapped span
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

package span

import (
	"sync/atomic"
	"unsafe"

	"github.com/opencoff/vmem/errs"
)

// ReadVolatile reads a byte, uint32 or uint64 at off without letting the
// compiler fuse or reorder the load with adjacent accesses to the same
// mapped region — important because mapped memory can change underneath
// the process (another mapper writing the same pages) in ways the Go
// memory model's normal reasoning about plain loads does not account for.
// It is implemented on top of sync/atomic, which is the only portion of the
// standard library that makes this guarantee; nothing in the retrieval
// pack exposes a dedicated volatile-access primitive to build on instead.
func ReadVolatile[T byte | uint32 | uint64](s Span, off int) (T, error) {
	var zero T
	if err := checkRange[T](s, off); err != nil {
		return zero, err
	}
	ptr := unsafe.Pointer(s.ptr + uintptr(off))
	switch any(zero).(type) {
	case byte:
		// sync/atomic has no single-byte primitive; a plain volatile
		// byte load/store is not torn on any platform this package
		// targets, so it is read directly rather than widened to a
		// uint32 (which would risk reading past the end of s).
		return any(*(*byte)(ptr)).(T), nil
	case uint32:
		return any(atomic.LoadUint32((*uint32)(ptr))).(T), nil
	case uint64:
		return any(atomic.LoadUint64((*uint64)(ptr))).(T), nil
	default:
		return zero, errs.New(errs.InvalidInput, "read_volatile")
	}
}

// WriteVolatile is the write counterpart of ReadVolatile.
func WriteVolatile[T byte | uint32 | uint64](s SpanMut, off int, v T) error {
	if err := checkRange[T](s.Span, off); err != nil {
		return err
	}
	ptr := unsafe.Pointer(s.ptr + uintptr(off))
	switch x := any(v).(type) {
	case byte:
		*(*byte)(ptr) = x
	case uint32:
		atomic.StoreUint32((*uint32)(ptr), x)
	case uint64:
		atomic.StoreUint64((*uint64)(ptr), x)
	}
	return nil
}
