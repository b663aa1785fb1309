// facade_linux.go - Linux mmap flags and ring-pair allocation
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

//go:build linux

package vm

import (
	"golang.org/x/sys/unix"

	"github.com/opencoff/vmem/errs"
)

const mapPopulate = unix.MAP_POPULATE

// allocRingPairOS backs a ring pair with a memfd_create anonymous
// shared-memory object, ftruncate'd to len, mapped twice into a 2*len
// PROT_NONE reservation. memfd needs no unlink — it was never linked into
// any namespace — so the fd is closed as soon as both halves exist.
func allocRingPairOS(length int64, retries int) (RingPair, error) {
	fd, err := unix.MemfdCreate("vmem-ring", 0)
	if err != nil {
		return RingPair{}, errs.Wrap(errs.Os, "alloc_ring", err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, length); err != nil {
		return RingPair{}, errs.Wrap(errs.Os, "alloc_ring", err)
	}

	return mapDoubleFromFD(fd, length, retries)
}
