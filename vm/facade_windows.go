// facade_windows.go - Windows map/unmap/protect/flush/advise/lock
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

//go:build windows

package vm

import (
	"fmt"
	"os"
	"reflect"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/opencoff/vmem/errs"
)

const mapPopulate = 0 // no Windows equivalent; populate silently becomes a no-op

// convert mirrors alexeymaximov-mmap's mmap_windows_amd64.go convert():
// CreateFileMapping wants a PAGE_* protection constant, MapViewOfFile wants
// a separate FILE_MAP_* access bitmask, and the EXEC variants are the
// READONLY/READWRITE/WRITECOPY constants left-shifted by 4.
func convert(prot Prot) (createProt uint32, mapAccess uint32) {
	createProt = windows.PAGE_READONLY
	mapAccess = windows.FILE_MAP_READ

	switch {
	case prot&Write != 0 && prot&Copy != 0:
		createProt = windows.PAGE_WRITECOPY
		mapAccess = windows.FILE_MAP_COPY
	case prot&Write != 0:
		createProt = windows.PAGE_READWRITE
		mapAccess = windows.FILE_MAP_WRITE
	}

	if prot&Exec != 0 {
		mapAccess |= windows.FILE_MAP_EXECUTE
		createProt <<= 4
	}
	return
}

func addrOf(b []byte) uintptr {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	return sh.Data
}

func bytesAt(ptr uintptr, length int64) []byte {
	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = ptr
	sh.Len = int(length)
	sh.Cap = int(length)
	return b
}

// mapOS mirrors opencoff-go-mmap's mmap_windows.go do_mmap: CreateFileMapping
// then MapViewOfFile, with the file-mapping handle closed immediately
// afterward — only the mapped view itself is retained.
func mapOS(f *os.File, offset, length int64, prot Prot, vis Visibility, _ bool) (uintptr, error) {
	createProt, access := convert(prot)

	fd := windows.InvalidHandle
	if f != nil {
		fd = windows.Handle(f.Fd())
	}

	maxSz := uint64(offset) + uint64(length)
	h, err := windows.CreateFileMapping(fd, nil, createProt, uint32(maxSz>>32), uint32(maxSz&0xffffffff), nil)
	if err != nil {
		return 0, errs.Wrap(kindForWinErr(err), "map", os.NewSyscallError("CreateFileMapping", err))
	}
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, access, uint32(uint64(offset)>>32), uint32(uint64(offset)&0xffffffff), uintptr(length))
	if err != nil {
		return 0, errs.Wrap(kindForWinErr(err), "map", os.NewSyscallError("MapViewOfFile", err))
	}
	return addr, nil
}

func unmapOS(ptr uintptr, _ int64) error {
	if err := windows.UnmapViewOfFile(ptr); err != nil {
		return errs.Wrap(errs.Os, "unmap", os.NewSyscallError("UnmapViewOfFile", err))
	}
	return nil
}

func protectOS(ptr uintptr, length int64, prot Prot) error {
	createProt, _ := convert(prot)
	var old uint32
	if err := windows.VirtualProtect(ptr, uintptr(length), createProt, &old); err != nil {
		return errs.Wrap(kindForWinErr(err), "protect", os.NewSyscallError("VirtualProtect", err))
	}
	return nil
}

// flushOS does a Sync flush via FlushViewOfFile, then FlushFileBuffers on
// the caller-supplied handle to force the write through the OS cache to
// durable storage. Async stops after the view flush.
func flushOS(ptr uintptr, length int64, mode Flush, f *os.File) error {
	if err := windows.FlushViewOfFile(ptr, uintptr(length)); err != nil {
		return errs.Wrap(errs.Os, "flush", os.NewSyscallError("FlushViewOfFile", err))
	}
	if mode == Sync && f != nil {
		if err := windows.FlushFileBuffers(windows.Handle(f.Fd())); err != nil {
			return errs.Wrap(errs.Os, "flush", os.NewSyscallError("FlushFileBuffers", err))
		}
	}
	return nil
}

// adviseOS maps WillNeed onto PrefetchVirtualMemory, the closest Windows
// analogue available; every other hint, DontNeed included, is a no-op on
// this OS (OfferVirtualMemory is not called).
func adviseOS(ptr uintptr, length int64, advice Advice) error {
	switch advice {
	case WillNeed:
		entry := windows.MemoryRangeEntry{VirtualAddress: ptr, NumberOfBytes: uintptr(length)}
		proc, err := windows.GetCurrentProcess()
		if err != nil {
			return nil
		}
		if err := windows.PrefetchVirtualMemory(proc, 1, &entry, 0); err != nil {
			return nil
		}
	default:
	}
	return nil
}

func lockOS(ptr uintptr, length int64) error {
	if err := windows.VirtualLock(ptr, uintptr(length)); err != nil {
		return errs.Wrap(kindForWinErr(err), "lock", os.NewSyscallError("VirtualLock", err))
	}
	return nil
}

func unlockOS(ptr uintptr, length int64) error {
	if err := windows.VirtualUnlock(ptr, uintptr(length)); err != nil {
		return errs.Wrap(errs.Os, "unlock", os.NewSyscallError("VirtualUnlock", err))
	}
	return nil
}

func kindForWinErr(err error) errs.Kind {
	if err == windows.ERROR_ACCESS_DENIED {
		return errs.PermissionDenied
	}
	return errs.Os
}

// allocRingPairOS backs a ring pair with a pagefile-backed CreateFileMapping
// (INVALID_HANDLE_VALUE source), then a bounded free-address-probe retry —
// reserve 2*length with VirtualAlloc, free the reservation, and immediately
// race to MapViewOfFile the same section into both halves of that now-free
// range. This probe-and-race approach is the standard fallback for systems
// that lack an atomic placeholder-reservation API.
func allocRingPairOS(length int64, retries int) (RingPair, error) {
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE,
		uint32(uint64(length)>>32), uint32(uint64(length)&0xffffffff), nil)
	if err != nil {
		return RingPair{}, errs.Wrap(errs.Os, "alloc_ring", os.NewSyscallError("CreateFileMapping", err))
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		base, err := windows.VirtualAlloc(0, uintptr(length*2), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
		if err != nil {
			lastErr = err
			continue
		}
		if err := windows.VirtualFree(base, 0, windows.MEM_RELEASE); err != nil {
			lastErr = err
			continue
		}

		one, err := windows.MapViewOfFileEx(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(length), base)
		if err != nil || one != base {
			if one != 0 {
				windows.UnmapViewOfFile(one)
			}
			lastErr = err
			continue
		}

		two, err := windows.MapViewOfFileEx(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(length), base+uintptr(length))
		if err != nil || two != base+uintptr(length) {
			windows.UnmapViewOfFile(one)
			if two != 0 {
				windows.UnmapViewOfFile(two)
			}
			lastErr = err
			continue
		}

		return RingPair{
			Base: base,
			Len:  length,
			Close: func() error {
				e1 := windows.UnmapViewOfFile(base)
				e2 := windows.UnmapViewOfFile(base + uintptr(length))
				e3 := windows.CloseHandle(h)
				if e1 != nil {
					return e1
				}
				if e2 != nil {
					return e2
				}
				return e3
			},
		}, nil
	}

	windows.CloseHandle(h)
	return RingPair{}, errs.Wrap(errs.AddressSpace, "alloc_ring",
		fmt.Errorf("no room for double mapping after %d attempts: %w", retries, lastErr))
}
