// page.go - page size and allocation granularity queries
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

// Package page caches the host page size and allocation granularity and
// provides the rounding helpers the rest of vmem uses to align offsets and
// lengths before handing them to the OS mapping calls.
package page

import "sync"

var (
	once        sync.Once
	pageSize    int
	allocGranul int
)

// Size returns the host page size in bytes. Always a power of two.
func Size() int {
	once.Do(probe)
	return pageSize
}

// AllocationGranularity returns the minimum alignment for virtual address
// reservations. On POSIX this equals Size(); on Windows it is typically
// 64 KiB and is always >= Size().
func AllocationGranularity() int {
	once.Do(probe)
	return allocGranul
}

// FloorPage rounds x down to the nearest page boundary.
func FloorPage(x int64) int64 {
	p := int64(Size())
	return x &^ (p - 1)
}

// CeilPage rounds x up to the nearest page boundary.
func CeilPage(x int64) int64 {
	p := int64(Size())
	return (x + p - 1) &^ (p - 1)
}

// FloorAlloc rounds x down to the nearest allocation-granularity boundary.
func FloorAlloc(x int64) int64 {
	g := int64(AllocationGranularity())
	return x &^ (g - 1)
}

// CeilAlloc rounds x up to the nearest allocation-granularity boundary.
func CeilAlloc(x int64) int64 {
	g := int64(AllocationGranularity())
	return (x + g - 1) &^ (g - 1)
}
