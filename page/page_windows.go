// page_windows.go - Windows page/allocation granularity probe
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

package page

import "golang.org/x/sys/windows"

// GetSystemInfo reports dwPageSize and dwAllocationGranularity, the latter
// being the real constraint on where a view may be based (typically 64 KiB).
func probe() {
	var si windows.SystemInfo
	windows.GetSystemInfo(&si)
	pageSize = int(si.PageSize)
	allocGranul = int(si.AllocationGranularity)
}
