package page_test

import (
	"testing"

	"github.com/opencoff/vmem/page"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		t.Helper()
		if !cond {
			t.Fatalf(msg, args...)
		}
	}
}

func TestSizeIsPowerOfTwo(t *testing.T) {
	assert := newAsserter(t)

	sz := page.Size()
	assert(sz > 0, "page size must be positive, saw %d", sz)
	assert(sz&(sz-1) == 0, "page size %d is not a power of two", sz)
}

func TestAllocationGranularityAtLeastPageSize(t *testing.T) {
	assert := newAsserter(t)

	g := page.AllocationGranularity()
	assert(g >= page.Size(), "allocation granularity %d smaller than page size %d", g, page.Size())
	assert(g&(g-1) == 0, "allocation granularity %d is not a power of two", g)
}

func TestFloorCeilPage(t *testing.T) {
	assert := newAsserter(t)

	p := int64(page.Size())

	assert(page.FloorPage(0) == 0, "floor(0) != 0")
	assert(page.FloorPage(p) == p, "floor(p) != p")
	assert(page.FloorPage(p+1) == p, "floor(p+1) != p")
	assert(page.CeilPage(1) == p, "ceil(1) != p")
	assert(page.CeilPage(p) == p, "ceil(p) != p")
	assert(page.CeilPage(p+1) == 2*p, "ceil(p+1) != 2p")
}

func TestFloorCeilAlloc(t *testing.T) {
	assert := newAsserter(t)

	g := int64(page.AllocationGranularity())

	assert(page.CeilAlloc(1) == g, "ceil_alloc(1) != granularity")
	assert(page.CeilAlloc(g+1) == 2*g, "ceil_alloc(g+1) != 2g")
	assert(page.FloorAlloc(g) == g, "floor_alloc(g) != g")
}
