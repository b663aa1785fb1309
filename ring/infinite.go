// infinite.go - overwrite-tolerant double-mapped ring
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

package ring

import (
	"sync/atomic"
	"unsafe"

	"github.com/opencoff/vmem/errs"
	"github.com/opencoff/vmem/seq"
	"github.com/opencoff/vmem/vm"
)

var (
	_ seq.SeqReader = (*InfiniteRing)(nil)
	_ seq.SeqWriter = (*InfiniteRing)(nil)
)

// InfiniteRing shares Ring's double-mapped backing and cursor protocol, but
// the producer is never refused: once wpos advances past rpos+cap, the
// reader's effective start silently becomes wpos-cap and the bytes between
// the old rpos and that point are lost. Readers can detect this by noticing
// Readable() > Cap() before the next read clamps it.
type InfiniteRing struct {
	base uintptr
	cap  int64

	rpos atomic.Uint64
	wpos atomic.Uint64

	closeFn func() error
	closed  bool
}

// NewInfinite allocates an InfiniteRing able to hold at least requested
// bytes, rounded up to the host's allocation granularity.
func NewInfinite(requested int64) (*InfiniteRing, error) {
	return newInfiniteRing(requested, 8)
}

// NewInfiniteWithRetries is NewInfinite with an explicit address-space
// reservation retry bound.
func NewInfiniteWithRetries(requested int64, retries int) (*InfiniteRing, error) {
	return newInfiniteRing(requested, retries)
}

func newInfiniteRing(requested int64, retries int) (*InfiniteRing, error) {
	if requested <= 0 {
		return nil, errs.New(errs.InvalidInput, "infinite_ring_new")
	}
	pair, err := vm.AllocRingPair(requested, retries)
	if err != nil {
		return nil, err
	}
	return &InfiniteRing{base: pair.Base, cap: pair.Len, closeFn: pair.Close}, nil
}

// Cap returns the ring's actual capacity.
func (r *InfiniteRing) Cap() int64 { return r.cap }

// Readable returns the number of bytes the producer has written since the
// last read, which may exceed Cap() if the consumer has fallen behind —
// that excess is exactly the number of bytes that have been overwritten
// and are no longer recoverable.
func (r *InfiniteRing) Readable() int64 {
	return int64(r.wpos.Load() - r.rpos.Load())
}

// Lost returns the number of bytes silently dropped because the producer
// outran the consumer by more than Cap() bytes: (wpos-cap)-rpos, clamped to
// zero when no loss has occurred.
func (r *InfiniteRing) Lost() int64 {
	wpos, rpos := r.wpos.Load(), r.rpos.Load()
	if wpos-rpos <= uint64(r.cap) {
		return 0
	}
	return int64((wpos - uint64(r.cap)) - rpos)
}

func (r *InfiniteRing) bytesAt(pos uint64, n int64) []byte {
	off := int64(pos % uint64(r.cap))
	return unsafe.Slice((*byte)(unsafe.Pointer(r.base+uintptr(off))), n)
}

// clampReadCursor folds any lost bytes into rpos so Readable() again
// reflects only what is actually still present, the way a real read call
// must before it can safely hand out a slice.
func (r *InfiniteRing) clampReadCursor() {
	wpos := r.wpos.Load()
	rpos := r.rpos.Load()
	if wpos-rpos > uint64(r.cap) {
		r.rpos.Store(wpos - uint64(r.cap))
	}
}

// WriteSlice always copies the entire src, advancing the write cursor by
// len(src) even past capacity; it never blocks and never fails. A src
// longer than Cap() is written in Cap()-sized chunks, since no more than
// Cap() bytes are ever safely contiguous through the double mapping from
// any one offset.
func (r *InfiniteRing) WriteSlice(src []byte) int {
	remaining := src
	for len(remaining) > 0 {
		chunk := remaining
		if int64(len(chunk)) > r.cap {
			chunk = chunk[:r.cap]
		}
		wpos := r.wpos.Load()
		dst := r.bytesAt(wpos, int64(len(chunk)))
		copy(dst, chunk)
		r.wpos.Store(wpos + uint64(len(chunk)))
		remaining = remaining[len(chunk):]
	}
	return len(src)
}

// ReadSlice copies up to len(dst) bytes, first clamping the read cursor
// past anything the producer has already overwritten.
func (r *InfiniteRing) ReadSlice(dst []byte) int {
	r.clampReadCursor()
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

// ReadOffset implements seq.SeqReader.
func (r *InfiniteRing) ReadOffset(length int) []byte {
	r.clampReadCursor()
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
func (r *InfiniteRing) Consume(n int) {
	r.rpos.Store(r.rpos.Load() + uint64(n))
}

// WriteOffset implements seq.SeqWriter. Because InfiniteRing never refuses
// writes, this always returns a full-length window (clamped to Cap()).
func (r *InfiniteRing) WriteOffset(length int) []byte {
	n := int64(length)
	if n > r.cap {
		n = r.cap
	}
	if n <= 0 {
		return nil
	}
	return r.bytesAt(r.wpos.Load(), n)
}

// Produce implements seq.SeqWriter.
func (r *InfiniteRing) Produce(n int) {
	r.wpos.Store(r.wpos.Load() + uint64(n))
}

// Close unmaps both halves of the double mapping and releases the backing
// object. Idempotent.
func (r *InfiniteRing) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.closeFn()
}
