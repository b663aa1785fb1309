package span_test

import (
	"testing"
	"unsafe"

	"github.com/opencoff/vmem/span"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		t.Helper()
		if !cond {
			t.Fatalf(msg, args...)
		}
	}
}

func backing(n int) (uintptr, []byte) {
	buf := make([]byte, n)
	return uintptr(unsafe.Pointer(&buf[0])), buf
}

func TestAtSetAtBounds(t *testing.T) {
	assert := newAsserter(t)

	ptr, buf := backing(16)
	s := span.NewMut(ptr, len(buf))

	assert(s.SetAt(0, 0xAB) == nil, "set_at(0) failed")
	b, err := s.At(0)
	assert(err == nil && b == 0xAB, "at(0) mismatch: %v %v", b, err)

	_, err = s.At(16)
	assert(err != nil, "at(16) should be out of bounds")
	assert(s.SetAt(-1, 0) != nil, "set_at(-1) should fail")
}

func TestReadWriteUnaligned(t *testing.T) {
	assert := newAsserter(t)

	ptr, buf := backing(16)
	s := span.NewMut(ptr, len(buf))

	err := span.WriteUnaligned[uint32](s, 1, 0xdeadbeef)
	assert(err == nil, "write_unaligned: %v", err)

	v, err := span.ReadUnaligned[uint32](s.Span, 1)
	assert(err == nil, "read_unaligned: %v", err)
	assert(v == 0xdeadbeef, "read_unaligned mismatch: %x", v)

	_, err = span.ReadUnaligned[uint64](s.Span, 10)
	assert(err != nil, "read_unaligned past end should fail")
}

func TestVolatileRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	ptr, buf := backing(16)
	s := span.NewMut(ptr, len(buf))

	assert(span.WriteVolatile[uint64](s, 0, 0x0102030405060708) == nil, "write_volatile failed")
	v, err := span.ReadVolatile[uint64](s.Span, 0)
	assert(err == nil && v == 0x0102030405060708, "read_volatile mismatch: %x %v", v, err)
}
