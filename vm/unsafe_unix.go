// unsafe_unix.go - pointer/byte-slice conversion helpers
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

//go:build darwin || linux || freebsd || openbsd || solaris || netbsd || dragonfly

package vm

import (
	"reflect"
	"unsafe"
)

// addrOf recovers the base address of a slice returned by unix.Mmap, the
// same way opencoff-go-mmap's Mapping.addr() does.
func addrOf(b []byte) uintptr {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	return sh.Data
}

// bytesAt reconstructs the []byte view the unix.* mmap family expects,
// given only the address and length vmem itself tracks. This is the inverse
// of addrOf and is only ever called with (ptr, length) pairs that vmem
// itself obtained from a previous mmap/ring allocation.
func bytesAt(ptr uintptr, length int64) []byte {
	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = ptr
	sh.Len = int(length)
	sh.Cap = int(length)
	return b
}
