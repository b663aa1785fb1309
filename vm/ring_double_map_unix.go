// ring_double_map_unix.go - shared POSIX double-mapping helper
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
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/opencoff/vmem/errs"
)

// mapDoubleFromFD reserves 2*length bytes PROT_NONE, then MAP_FIXED-maps fd
// into each half, retrying the whole dance if another allocator races us
// for the reservation between the initial reserve and the fixed sub-maps.
// Shared by every POSIX backing strategy (memfd on Linux, shm-via-tmpfile
// elsewhere) since the double-mapping step itself is OS-generic once a
// shareable fd exists.
func mapDoubleFromFD(fd int, length int64, retries int) (RingPair, error) {
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		base, err := unix.Mmap(-1, 0, int(length*2), unix.PROT_NONE,
			unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			lastErr = err
			continue
		}
		baseAddr := addrOf(base)

		one, err := mmapFixed(baseAddr, length,
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, fd, 0)
		if err != nil || one != baseAddr {
			unix.Munmap(base)
			lastErr = err
			continue
		}

		two, err := mmapFixed(baseAddr+uintptr(length), length,
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, fd, 0)
		if err != nil || two != baseAddr+uintptr(length) {
			unmapOS(baseAddr, length*2)
			lastErr = err
			continue
		}

		return RingPair{
			Base: baseAddr,
			Len:  length,
			Close: func() error {
				return unmapOS(baseAddr, length*2)
			},
		}, nil
	}
	return RingPair{}, errs.Wrap(errs.AddressSpace, "alloc_ring",
		fmt.Errorf("no room for double mapping after %d attempts: %w", retries, lastErr))
}
