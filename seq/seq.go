// seq.go - sequential reader/writer interfaces for ring buffers
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

// Package seq defines the shared cursor contract implemented by both
// ring.Ring and ring.InfiniteRing: a way to get a zero-copy slice of the
// readable/writable region and a separate way to advance past it, so that
// code written against these interfaces works with either ring without
// caring which one it holds. Package ringio does not use them: it wraps a
// *ring.Ring directly.
package seq

// SeqReader exposes the readable region as a slice and lets the caller
// advance the read cursor once it has consumed some of it.
type SeqReader interface {
	// ReadOffset returns up to length contiguous readable bytes starting
	// at the current read cursor. The returned slice aliases the ring's
	// backing memory and is only valid until the next Consume.
	ReadOffset(length int) []byte
	// Consume advances the read cursor by n bytes, which must not exceed
	// the length of the slice most recently returned by ReadOffset.
	Consume(n int)
}

// SeqWriter exposes the writable region as a slice and lets the caller
// advance the write cursor once it has filled some of it.
type SeqWriter interface {
	// WriteOffset returns up to length contiguous writable bytes starting
	// at the current write cursor. The returned slice aliases the ring's
	// backing memory and is only valid until the next Produce.
	WriteOffset(length int) []byte
	// Produce advances the write cursor by n bytes, which must not exceed
	// the length of the slice most recently returned by WriteOffset.
	Produce(n int)
}
