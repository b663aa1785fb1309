// map.go - owning Map/MapMut handles over a vm mapping
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

// Package mapping provides the owning Map and MapMut handles: the only way
// to reach a span.Span/SpanMut that guarantees the mapped range is released
// exactly once, deterministically, via Close.
//
// None of the types in this package are safe for concurrent use without
// external synchronization.
package mapping

import (
	"io"
	"os"
	"runtime"

	"github.com/opencoff/vmem/errs"
	"github.com/opencoff/vmem/span"
	"github.com/opencoff/vmem/vm"
)

// Handle is satisfied by both *Map and *MapMut, for callers that accept the
// options builder's terminal result without caring in advance which one
// they'll get (a type assertion recovers the mutable variant when Write was
// requested).
type Handle interface {
	Addr() uintptr
	Len() int64
	Bytes() []byte
	Writable() bool
	Advise(vm.Advice) error
	Lock() error
	Unlock() error
	Close() error
}

// Map is a read-only owning mapping.
type Map struct {
	sp       span.Span
	writable bool // protection at map time included Write, even though this handle only exposes read access
	execable bool
	closed   bool
}

// MapMut is a read-write owning mapping.
type MapMut struct {
	Map
}

// Open opens path, applies o, and maps it, returning the resulting handle
// and the *os.File the caller now owns (vmem never closes a file it did not
// itself open via this path — the caller is responsible for fd.Close()
// once the mapping and any later flushes are done, mirroring
// pault.ag/go/go-diskring's Options.DontCloseFile default-false posture
// inverted: here the caller always owns it, since Open is the one path
// that created the fd in the first place).
func Open(path string, o *vm.Options) (Handle, *os.File, error) {
	req := o.Request()

	flags := os.O_RDONLY
	if req.Prot&vm.Write != 0 || req.Resize || req.Truncate {
		flags = os.O_RDWR
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Os, "open", err)
	}

	h, err := MapFile(f, o)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return h, f, nil
}

// MapFile maps an already-open file per o. f is borrowed for the duration
// of this call only.
func MapFile(f *os.File, o *vm.Options) (Handle, error) {
	req := o.Request()
	ptr, length, err := vm.Map(f, req)
	if err != nil {
		return nil, err
	}
	return newHandle(ptr, length, req), nil
}

// Alloc maps an anonymous region per o (no backing file). Anonymous
// mappings are always at least read-write since there is no file whose
// open mode could restrict them.
func Alloc(o *vm.Options) (*MapMut, error) {
	req := o.Request()
	req.Prot |= vm.Read | vm.Write
	ptr, length, err := vm.Map(nil, req)
	if err != nil {
		return nil, err
	}
	h := newHandle(ptr, length, req)
	mm, ok := h.(*MapMut)
	if !ok {
		// Unreachable: req always includes Write above.
		return nil, errs.New(errs.InvalidInput, "alloc")
	}
	return mm, nil
}

func newHandle(ptr uintptr, length int64, req vm.Request) Handle {
	m := Map{
		sp:       span.New(ptr, int(length)),
		writable: req.Prot&vm.Write != 0,
		execable: req.Prot&vm.Exec != 0,
	}
	if m.writable {
		mm := &MapMut{Map: m}
		runtime.SetFinalizer(mm, (*MapMut).Close)
		return mm
	}
	runtime.SetFinalizer(&m, (*Map).Close)
	return &m
}

// Addr returns the mapping's base address.
func (m *Map) Addr() uintptr { return m.sp.Addr() }

// Len returns the mapping's length in bytes.
func (m *Map) Len() int64 { return int64(m.sp.Len()) }

// Writable reports whether the mapping was created with write protection,
// independent of whether this particular handle (Map vs MapMut) exposes a
// mutable view.
func (m *Map) Writable() bool { return m.writable }

// Executable reports whether the mapping was created with execute
// protection.
func (m *Map) Executable() bool { return m.execable }

// Bytes returns the mapping's contents as a read-only []byte.
func (m *Map) Bytes() []byte {
	if m.closed {
		return nil
	}
	return m.sp.Bytes()
}

// ReadAt implements io.ReaderAt over the mapped bytes.
func (m *Map) ReadAt(buf []byte, offset int64) (int, error) {
	if m.closed {
		return 0, errs.New(errs.InvalidInput, "read_at")
	}
	b := m.sp.Bytes()
	if offset < 0 || offset >= int64(len(b)) {
		return 0, errs.New(errs.InvalidInput, "read_at")
	}
	n := copy(buf, b[offset:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

// Advise applies a portable access-pattern hint to the mapped range.
func (m *Map) Advise(a vm.Advice) error {
	if m.closed {
		return errs.New(errs.InvalidInput, "advise")
	}
	return vm.Advise(m.sp.Addr(), m.Len(), a)
}

// Lock pins the mapped pages in RAM.
func (m *Map) Lock() error {
	if m.closed {
		return errs.New(errs.InvalidInput, "lock")
	}
	return vm.LockRange(m.sp.Addr(), m.Len())
}

// Unlock reverses Lock.
func (m *Map) Unlock() error {
	if m.closed {
		return errs.New(errs.InvalidInput, "unlock")
	}
	return vm.UnlockRange(m.sp.Addr(), m.Len())
}

// Close unmaps the region. Idempotent: closing an already-closed Map is a
// no-op, which is what makes double-drop impossible to observe.
func (m *Map) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	runtime.SetFinalizer(m, nil)
	return vm.Unmap(m.sp.Addr(), m.Len())
}

// IntoMapMut upgrades this Map to a MapMut. It succeeds only when the
// mapping was originally created with write protection — vmem never
// silently re-mprotects a mapping just because a caller asked for the
// mutable type, since the protection established at map time reflects the
// caller's original intent.
func (m *Map) IntoMapMut() (*MapMut, error) {
	if m.closed {
		return nil, errs.New(errs.InvalidInput, "into_map_mut")
	}
	if !m.writable {
		return nil, errs.New(errs.PermissionDenied, "into_map_mut")
	}
	runtime.SetFinalizer(m, nil)
	mm := &MapMut{Map: *m}
	m.closed = true // the old handle no longer owns the mapping
	runtime.SetFinalizer(mm, (*MapMut).Close)
	return mm, nil
}

// MutBytes returns the mapping's contents as a mutable []byte.
func (mm *MapMut) MutBytes() []byte {
	if mm.closed {
		return nil
	}
	return span.SpanMut{Span: mm.sp}.Bytes()
}

// WriteAt implements io.WriterAt over the mapped bytes.
func (mm *MapMut) WriteAt(buf []byte, offset int64) (int, error) {
	if mm.closed {
		return 0, errs.New(errs.InvalidInput, "write_at")
	}
	b := mm.MutBytes()
	if offset < 0 || offset >= int64(len(b)) {
		return 0, errs.New(errs.InvalidInput, "write_at")
	}
	n := copy(b[offset:], buf)
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

// Flush writes dirty pages back to f. f is borrowed for the duration of
// this call only and is required (not retained) for a Windows Sync flush.
func (mm *MapMut) Flush(f *os.File, mode vm.Flush) error {
	if mm.closed {
		return errs.New(errs.InvalidInput, "flush")
	}
	return vm.FlushRange(mm.sp.Addr(), mm.Len(), mode, f)
}

// IntoMap downgrades this MapMut to a read-only Map. Every writable
// mapping already permits reads, so this direction always succeeds; it
// exists so callers can hand out a read-only view without exposing the
// mutable methods, not because the OS needs to be asked for anything new.
func (mm *MapMut) IntoMap() (*Map, error) {
	if mm.closed {
		return nil, errs.New(errs.InvalidInput, "into_map")
	}
	runtime.SetFinalizer(mm, nil)
	m := mm.Map
	mm.closed = true
	runtime.SetFinalizer(&m, (*Map).Close)
	return &m, nil
}
