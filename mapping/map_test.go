package mapping_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencoff/vmem/errs"
	"github.com/opencoff/vmem/mapping"
	"github.com/opencoff/vmem/vm"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		t.Helper()
		if !cond {
			t.Fatalf(msg, args...)
		}
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	name := filepath.Join(dir, "test.bin")
	if err := os.WriteFile(name, []byte(content), 0600); err != nil {
		t.Fatalf("write fixture: %s", err)
	}
	return name
}

// Mapping two disjoint windows of the same file should see exactly the
// bytes at their respective offsets and nothing else.
func TestOpenOffsetWindows(t *testing.T) {
	assert := newAsserter(t)

	name := writeFile(t, "this is a test")

	h1, f1, err := mapping.Open(name, vm.NewOptions().Offset(0).Len(4).Read())
	assert(err == nil, "open offset 0: %s", err)
	assert(bytes.Equal(h1.Bytes(), []byte("this")), "offset 0 mismatch: %q", h1.Bytes())
	h1.Close()
	f1.Close()

	h2, f2, err := mapping.Open(name, vm.NewOptions().Offset(10).Len(4).Read())
	assert(err == nil, "open offset 10: %s", err)
	assert(bytes.Equal(h2.Bytes(), []byte("test")), "offset 10 mismatch: %q", h2.Bytes())
	h2.Close()
	f2.Close()
}

// Writing through a MapMut, flushing synchronously, then converting back to
// a read-only Map must observe the write, and so must a fresh file handle.
func TestWriteFlushIntoMap(t *testing.T) {
	assert := newAsserter(t)

	name := writeFile(t, "this is a test")

	h, f, err := mapping.Open(name, vm.NewOptions().Len(14).Read().Write())
	assert(err == nil, "open rw: %s", err)

	mm, ok := h.(*mapping.MapMut)
	assert(ok, "expected *MapMut from a Write() open")

	n := copy(mm.MutBytes(), []byte("that"))
	assert(n == 4, "copy: exp 4, saw %d", n)

	assert(mm.Flush(f, vm.Sync) == nil, "flush: %s", err)

	ro, err := mm.IntoMap()
	assert(err == nil, "into_map: %s", err)
	assert(bytes.Equal(ro.Bytes(), []byte("that is a test")), "post-flush mismatch: %q", ro.Bytes())

	ro.Close()
	f.Close()

	// Re-read through a fresh file handle to confirm durability.
	raw, err := os.ReadFile(name)
	assert(err == nil, "reread: %s", err)
	assert(bytes.Equal(raw, []byte("that is a test")), "on-disk mismatch: %q", raw)
}

// Converting a read-only mapping to a mutable one must fail with
// PermissionDenied rather than silently upgrading access.
func TestIntoMapMutRequiresWriteProtection(t *testing.T) {
	assert := newAsserter(t)

	name := writeFile(t, "immutable content")

	h, f, err := mapping.Open(name, vm.NewOptions().Read())
	assert(err == nil, "open ro: %s", err)
	defer f.Close()
	defer h.Close()

	m, ok := h.(*mapping.Map)
	assert(ok, "expected *Map from a read-only open")

	_, err = m.IntoMapMut()
	assert(errs.Is(err, errs.PermissionDenied), "into_map_mut on a read-only mapping should fail with PermissionDenied, got %v", err)
}

func TestAllocAnonymousIsWritable(t *testing.T) {
	assert := newAsserter(t)

	mm, err := mapping.Alloc(vm.NewOptions().Len(4096))
	assert(err == nil, "alloc: %s", err)
	defer mm.Close()

	buf := mm.MutBytes()
	assert(len(buf) == 4096, "alloc len exp 4096, saw %d", len(buf))
	buf[0] = 0x42
	assert(mm.Bytes()[0] == 0x42, "read-back mismatch")
}

func TestCloseIsIdempotent(t *testing.T) {
	assert := newAsserter(t)

	mm, err := mapping.Alloc(vm.NewOptions().Len(4096))
	assert(err == nil, "alloc: %s", err)

	assert(mm.Close() == nil, "first close: %s", err)
	assert(mm.Close() == nil, "second close should be a no-op")
}
