package ringio_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/opencoff/vmem/ring"
	"github.com/opencoff/vmem/ringio"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		t.Helper()
		if !cond {
			t.Fatalf(msg, args...)
		}
	}
}

func TestWriterThenReaderRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	r, err := ring.New(4096)
	assert(err == nil, "new: %s", err)
	defer r.Close()

	w := ringio.NewWriter(r)
	rd := ringio.NewReader(r)

	msg := []byte("hello from ringio")
	n, err := w.Write(msg)
	assert(err == nil, "write: %s", err)
	assert(n == len(msg), "write exp %d, saw %d", len(msg), n)

	out := make([]byte, len(msg))
	n, err = rd.Read(out)
	assert(err == nil, "read: %s", err)
	assert(n == len(msg), "read exp %d, saw %d", len(msg), n)
	assert(bytes.Equal(out, msg), "round trip mismatch: %q", out)
}

func TestWriterShortWriteOnFullRing(t *testing.T) {
	assert := newAsserter(t)

	r, err := ring.New(4096)
	assert(err == nil, "new: %s", err)
	defer r.Close()

	w := ringio.NewWriter(r)
	big := make([]byte, r.Cap()+100)
	n, err := w.Write(big)
	assert(err == io.ErrShortWrite, "expected io.ErrShortWrite, got %v", err)
	assert(int64(n) == r.Cap(), "exp %d bytes written, saw %d", r.Cap(), n)
}

func TestReaderReturnsZeroNilOnEmptyOpenRing(t *testing.T) {
	assert := newAsserter(t)

	r, err := ring.New(4096)
	assert(err == nil, "new: %s", err)
	defer r.Close()

	rd := ringio.NewReader(r)
	buf := make([]byte, 16)
	n, err := rd.Read(buf)
	assert(n == 0 && err == nil, "expected (0, nil) on an empty, unclosed ring, got (%d, %v)", n, err)
}

func TestReaderReturnsEOFAfterCloseAndDrain(t *testing.T) {
	assert := newAsserter(t)

	r, err := ring.New(4096)
	assert(err == nil, "new: %s", err)
	defer r.Close()

	w := ringio.NewWriter(r)
	rd := ringio.NewReader(r)

	_, err = w.Write([]byte("last message"))
	assert(err == nil, "write: %s", err)
	assert(rd.Close() == nil, "close")

	buf := make([]byte, 64)
	n, err := rd.Read(buf)
	assert(err == nil, "expected drain read to succeed before EOF, got %v", err)
	assert(n == len("last message"), "drain read exp %d, saw %d", len("last message"), n)

	n, err = rd.Read(buf)
	assert(n == 0 && err == io.EOF, "expected (0, io.EOF) once drained after Close, got (%d, %v)", n, err)
}
