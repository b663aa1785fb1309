// mmap_fixed_unix.go - raw MAP_FIXED mmap syscall helper
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
	"golang.org/x/sys/unix"
)

// mmapFixed installs prot/flags|MAP_FIXED at the exact address addr. The
// golang.org/x/sys/unix.Mmap wrapper always lets the kernel choose the
// address, so ring double-mapping — which must land two views at specific,
// adjacent addresses — goes through the raw syscall directly, the same way
// pault.ag/go/go-diskring's mmap() helper does (it hits the same wrapper
// limitation for the identical reason: installing a MAP_FIXED alias).
func mmapFixed(addr uintptr, length int64, prot, flags, fd int, offset int64) (uintptr, error) {
	r0, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, uintptr(length),
		uintptr(prot), uintptr(flags), uintptr(fd), uintptr(offset))
	if errno != 0 {
		return 0, errno
	}
	return r0, nil
}
