// facade.go - OS-agnostic entry points over the per-OS facade
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

package vm

import (
	"os"

	"github.com/opencoff/vmem/errs"
	"github.com/opencoff/vmem/page"
)

// Map reserves and maps a region described by req against f (nil for an
// anonymous mapping), returning the base address the OS handed back and the
// resolved length (req.Len, or the rest of the file when req.Len is 0). The
// OS mapping itself covers that length rounded up to a page multiple; Unmap
// and the other range calls redo that rounding from the returned length.
// f is borrowed for the duration of this call only; Map never retains,
// dup's, or closes it.
func Map(f *os.File, req Request) (ptr uintptr, actualLen int64, err error) {
	fileLen := int64(-1)
	if f != nil {
		st, serr := f.Stat()
		if serr != nil {
			return 0, 0, errs.Wrap(errs.Os, "map", serr)
		}
		fileLen = st.Size()
	}

	opt := &Options{req: req}
	resolved, verr := opt.validate(fileLen)
	if verr != nil {
		return 0, 0, verr
	}

	if f != nil && resolved.Truncate {
		if terr := f.Truncate(resolved.Offset + resolved.Len); terr != nil {
			return 0, 0, errs.Wrap(errs.Os, "map", terr)
		}
		if resolved.Offset+resolved.Len > fileLen {
			fileLen = resolved.Offset + resolved.Len
		}
	}
	if f != nil && resolved.Resize && resolved.Offset+resolved.Len > fileLen {
		if terr := f.Truncate(resolved.Offset + resolved.Len); terr != nil {
			return 0, 0, errs.Wrap(errs.Os, "map", terr)
		}
	}

	mapLen := page.CeilPage(resolved.Len)
	ptr, err = mapOS(f, resolved.Offset, mapLen, resolved.Prot, resolved.Visibility, resolved.Populate)
	if err != nil {
		return 0, 0, err
	}

	if resolved.Lock {
		if lerr := LockRange(ptr, resolved.Len); lerr != nil {
			_ = unmapOS(ptr, mapLen)
			return 0, 0, lerr
		}
	}

	return ptr, resolved.Len, nil
}

// Unmap releases exactly the range returned by a prior Map/AllocRingPair
// call.
func Unmap(ptr uintptr, length int64) error {
	return unmapOS(ptr, page.CeilPage(length))
}

// Protect changes the access rights of an already-mapped range in place.
func Protect(ptr uintptr, length int64, prot Prot) error {
	return protectOS(ptr, page.CeilPage(length), prot)
}

// FlushRange writes dirty pages in [ptr, ptr+length) back to their backing
// object. f is required (and borrowed, never retained) for a Windows Sync
// flush, where it is paired with FlushFileBuffers; it may be nil otherwise.
func FlushRange(ptr uintptr, length int64, mode Flush, f *os.File) error {
	return flushOS(ptr, page.CeilPage(length), mode, f)
}

// Advise applies a portable access-pattern hint. An OS lacking the
// requested hint succeeds without effect.
func Advise(ptr uintptr, length int64, advice Advice) error {
	return adviseOS(ptr, page.CeilPage(length), advice)
}

// LockRange pins the given pages in RAM, refusing to page them out.
func LockRange(ptr uintptr, length int64) error {
	return lockOS(ptr, page.CeilPage(length))
}

// UnlockRange reverses LockRange.
func UnlockRange(ptr uintptr, length int64) error {
	return unlockOS(ptr, page.CeilPage(length))
}

// RingPair is the result of allocating a double-mapped region: two adjacent
// virtual windows of Len bytes that alias the same physical pages, plus a
// Close that tears down both mappings and any backing object.
type RingPair struct {
	Base  uintptr
	Len   int64
	Close func() error
}

// AllocRingPair reserves 2*ceil_alloc(length) bytes of contiguous address
// space and maps the same physical backing into both halves, so that
// byte i and byte i+Len alias for every 0 <= i < Len. It retries the
// reserve/map race up to retries times before giving up with an
// AddressSpace error.
func AllocRingPair(length int64, retries int) (RingPair, error) {
	if length <= 0 {
		return RingPair{}, errs.New(errs.InvalidInput, "alloc_ring")
	}
	if retries <= 0 {
		retries = 8
	}
	ceil := page.CeilAlloc(length)
	return allocRingPairOS(ceil, retries)
}
