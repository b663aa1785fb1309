// ringio.go - io.Reader/io.Writer adapters over a ring.Ring
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

// Package ringio adapts ring.Ring to the standard io.Reader/io.Writer
// contract. It lives outside the ring package deliberately: it imports
// ring rather than the other way around, and contains no ring-protocol
// logic of its own — just the translation to/from io's blocking-free
// short-read/short-write conventions.
package ringio

import (
	"io"

	"github.com/opencoff/vmem/ring"
)

// Reader adapts a *ring.Ring to io.Reader. Read returns io.EOF once the
// ring is empty and Closed has been called; until Closed, an empty ring
// yields (0, nil), matching io.Reader's "no data right now, not an error"
// convention for non-blocking sources.
type Reader struct {
	r      *ring.Ring
	closed bool
}

// NewReader wraps r for io.Reader-style consumption.
func NewReader(r *ring.Ring) *Reader {
	return &Reader{r: r}
}

// Close marks the ring as producer-closed for this reader; once the ring
// subsequently drains, Read begins returning io.EOF instead of (0, nil).
func (rr *Reader) Close() error {
	rr.closed = true
	return nil
}

func (rr *Reader) Read(p []byte) (int, error) {
	n := rr.r.ReadSlice(p)
	if n == 0 && rr.closed && rr.r.IsEmpty() {
		return 0, io.EOF
	}
	return n, nil
}

// Writer adapts a *ring.Ring to io.Writer. Write returns as many bytes as
// fit; a write that doesn't fully fit is reported via io.ErrShortWrite
// rather than looping, since ring.Ring's WriteSlice itself never blocks.
type Writer struct {
	r *ring.Ring
}

// NewWriter wraps r for io.Writer-style production.
func NewWriter(r *ring.Ring) *Writer {
	return &Writer{r: r}
}

func (rw *Writer) Write(p []byte) (int, error) {
	n := rw.r.WriteSlice(p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}
