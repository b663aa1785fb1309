// facade_unix.go - POSIX map/unmap/protect/flush/advise/lock
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
	"os"

	"golang.org/x/sys/unix"

	"github.com/opencoff/vmem/errs"
)

func toUnixProt(p Prot) int {
	prot := unix.PROT_READ
	if p&Write != 0 {
		prot |= unix.PROT_WRITE
	}
	if p&Exec != 0 {
		prot |= unix.PROT_EXEC
	}
	return prot
}

func toUnixFlags(p Prot, v Visibility) int {
	flags := unix.MAP_SHARED
	if p&Copy != 0 || v == Private {
		flags = unix.MAP_PRIVATE
	}
	return flags
}

// kindForErrno classifies an mmap-family errno: permission failures are
// distinguished from generic OS failures so callers can branch on
// errs.PermissionDenied without string-matching.
func kindForErrno(err error) errs.Kind {
	if err == unix.EACCES || err == unix.EPERM {
		return errs.PermissionDenied
	}
	return errs.Os
}

func mapOS(f *os.File, offset, length int64, prot Prot, vis Visibility, populate bool) (uintptr, error) {
	uprot := toUnixProt(prot)
	uflags := toUnixFlags(prot, vis)
	if populate {
		uflags |= mapPopulate
	}

	fd := -1
	if f != nil {
		fd = int(f.Fd())
	} else {
		uflags |= unix.MAP_ANON
	}

	b, err := unix.Mmap(fd, offset, int(length), uprot, uflags)
	if err != nil {
		return 0, errs.Wrap(kindForErrno(err), "map", err)
	}
	return addrOf(b), nil
}

func unmapOS(ptr uintptr, length int64) error {
	b := bytesAt(ptr, length)
	if err := unix.Munmap(b); err != nil {
		return errs.Wrap(errs.Os, "unmap", err)
	}
	return nil
}

func protectOS(ptr uintptr, length int64, prot Prot) error {
	b := bytesAt(ptr, length)
	if err := unix.Mprotect(b, toUnixProt(prot)); err != nil {
		return errs.Wrap(kindForErrno(err), "protect", err)
	}
	return nil
}

func flushOS(ptr uintptr, length int64, mode Flush, _ *os.File) error {
	b := bytesAt(ptr, length)
	flag := unix.MS_ASYNC
	if mode == Sync {
		flag = unix.MS_SYNC
	}
	if err := unix.Msync(b, flag); err != nil {
		return errs.Wrap(errs.Os, "flush", err)
	}
	return nil
}

func adviseOS(ptr uintptr, length int64, advice Advice) error {
	b := bytesAt(ptr, length)
	var a int
	switch advice {
	case Normal:
		a = unix.MADV_NORMAL
	case Random:
		a = unix.MADV_RANDOM
	case Sequential:
		a = unix.MADV_SEQUENTIAL
	case WillNeed:
		a = unix.MADV_WILLNEED
	case DontNeed:
		a = unix.MADV_DONTNEED
	default:
		a = unix.MADV_NORMAL
	}
	if err := unix.Madvise(b, a); err != nil {
		// Some platforms refuse advice they don't implement; treat that
		// as a portable no-op, not a failure.
		if err == unix.ENOSYS || err == unix.EINVAL {
			return nil
		}
		return errs.Wrap(errs.Os, "advise", err)
	}
	return nil
}

func lockOS(ptr uintptr, length int64) error {
	b := bytesAt(ptr, length)
	if err := unix.Mlock(b); err != nil {
		return errs.Wrap(kindForErrno(err), "lock", err)
	}
	return nil
}

func unlockOS(ptr uintptr, length int64) error {
	b := bytesAt(ptr, length)
	if err := unix.Munlock(b); err != nil {
		return errs.Wrap(errs.Os, "unlock", err)
	}
	return nil
}
