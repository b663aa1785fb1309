// ring.go - finite double-mapped SPSC byte ring
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

// Package ring implements the double-mapped SPSC byte ring and its
// overwrite-tolerant sibling InfiniteRing. Both are backed by
// vm.AllocRingPair, which gives them a virtual range [base, base+2*cap)
// where byte base[i] and byte base[i+cap] alias the same physical page for
// every 0 <= i < cap — so a write or read that crosses the "end" of the
// ring is just a normal contiguous memcpy, never a split-buffer special
// case.
//
// Exactly one producer and one consumer may use a given Ring concurrently,
// possibly from different goroutines; there is no support for more of
// either.
package ring

import (
	"sync/atomic"
	"unsafe"

	"github.com/opencoff/vmem/errs"
	"github.com/opencoff/vmem/seq"
	"github.com/opencoff/vmem/vm"
)

var (
	_ seq.SeqReader = (*Ring)(nil)
	_ seq.SeqWriter = (*Ring)(nil)
)

// Ring is a finite SPSC byte queue: a write that would exceed capacity is
// short, never lossy.
type Ring struct {
	base uintptr
	cap  int64

	rpos atomic.Uint64
	wpos atomic.Uint64

	closeFn func() error
	closed  bool
}

// New allocates a Ring able to hold at least requested bytes, rounded up to
// the host's allocation granularity.
func New(requested int64) (*Ring, error) {
	return newRing(requested, 8)
}

// NewWithRetries is New with an explicit bound on the address-space
// reservation retry.
func NewWithRetries(requested int64, retries int) (*Ring, error) {
	return newRing(requested, retries)
}

func newRing(requested int64, retries int) (*Ring, error) {
	if requested <= 0 {
		return nil, errs.New(errs.InvalidInput, "ring_new")
	}
	pair, err := vm.AllocRingPair(requested, retries)
	if err != nil {
		return nil, err
	}
	r := &Ring{base: pair.Base, cap: pair.Len, closeFn: pair.Close}
	return r, nil
}

// Cap returns the ring's actual capacity (ceil_alloc(requested)).
func (r *Ring) Cap() int64 { return r.cap }

// Readable returns how many bytes are currently available to read.
func (r *Ring) Readable() int64 {
	return int64(r.wpos.Load() - r.rpos.Load())
}

// Writable returns how many bytes may currently be written without
// blocking or losing data.
func (r *Ring) Writable() int64 {
	return r.cap - r.Readable()
}

// IsEmpty reports whether the ring currently holds no data.
func (r *Ring) IsEmpty() bool { return r.Readable() == 0 }

// IsFull reports whether the ring currently has no room to write.
func (r *Ring) IsFull() bool { return r.Writable() == 0 }

func (r *Ring) bytesAt(pos uint64, n int64) []byte {
	off := int64(pos % uint64(r.cap))
	return unsafe.Slice((*byte)(unsafe.Pointer(r.base+uintptr(off))), n)
}

// WriteSlice copies min(len(src), Writable()) bytes into the ring starting
// at the current write cursor, publishes the new write cursor with release
// semantics, and returns the number of bytes copied. It never blocks and
// never errors: a full ring simply returns 0.
func (r *Ring) WriteSlice(src []byte) int {
	writable := r.Writable()
	n := int64(len(src))
	if n > writable {
		n = writable
	}
	if n == 0 {
		return 0
	}

	wpos := r.wpos.Load()
	dst := r.bytesAt(wpos, n)
	copy(dst, src[:n])

	r.wpos.Store(wpos + uint64(n))
	return int(n)
}

// ReadSlice copies min(len(dst), Readable()) bytes out of the ring starting
// at the current read cursor, advances the read cursor, and returns the
// number of bytes copied.
func (r *Ring) ReadSlice(dst []byte) int {
	readable := r.Readable()
	n := int64(len(dst))
	if n > readable {
		n = readable
	}
	if n == 0 {
		return 0
	}

	rpos := r.rpos.Load()
	src := r.bytesAt(rpos, n)
	copy(dst, src)

	r.rpos.Store(rpos + uint64(n))
	return int(n)
}

// Peek exposes up to Readable() contiguous bytes beginning at the read
// cursor without advancing it. The returned slice aliases the ring's
// backing memory and is only valid until the next read or close.
func (r *Ring) Peek() []byte {
	n := r.Readable()
	if n == 0 {
		return nil
	}
	return r.bytesAt(r.rpos.Load(), n)
}

// ReadOffset implements seq.SeqReader.
func (r *Ring) ReadOffset(length int) []byte {
	n := r.Readable()
	if int64(length) < n {
		n = int64(length)
	}
	if n <= 0 {
		return nil
	}
	return r.bytesAt(r.rpos.Load(), n)
}

// Consume implements seq.SeqReader.
func (r *Ring) Consume(n int) {
	r.rpos.Store(r.rpos.Load() + uint64(n))
}

// WriteOffset implements seq.SeqWriter: a SpanMut-equivalent slice into the
// writable region, for producers that want to fill in place rather than
// copy via WriteSlice.
func (r *Ring) WriteOffset(length int) []byte {
	n := r.Writable()
	if int64(length) < n {
		n = int64(length)
	}
	if n <= 0 {
		return nil
	}
	return r.bytesAt(r.wpos.Load(), n)
}

// Produce implements seq.SeqWriter.
func (r *Ring) Produce(n int) {
	r.wpos.Store(r.wpos.Load() + uint64(n))
}

// Close unmaps both halves of the double mapping and releases the backing
// object. Idempotent.
func (r *Ring) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.closeFn()
}
