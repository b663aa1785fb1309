// facade_shm_unix.go - tmpfile-backed ring-pair fallback for POSIX
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

//go:build darwin || freebsd || openbsd || solaris || netbsd || dragonfly

package vm

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/opencoff/vmem/errs"
)

// allocRingPairViaShm backs a ring pair with a temporary file created,
// unlinked, and ftruncate'd before any mapping is returned to the caller.
// It is the ring backing on every POSIX target other than Linux (Darwin,
// the BSDs, Solaris). The file is a regular os.CreateTemp file under the
// system temp directory; once unlinked it no longer appears in the
// namespace after this call returns.
func allocRingPairViaShm(length int64, retries int) (RingPair, error) {
	f, err := os.CreateTemp("", "vmem-ring-")
	if err != nil {
		return RingPair{}, errs.Wrap(errs.Os, "alloc_ring", err)
	}
	name := f.Name()
	defer os.Remove(name)
	defer f.Close()
	_ = os.Remove(name)

	if err := unix.Ftruncate(int(f.Fd()), length); err != nil {
		return RingPair{}, errs.Wrap(errs.Os, "alloc_ring", err)
	}

	return mapDoubleFromFD(int(f.Fd()), length, retries)
}
