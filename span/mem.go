// mem.go - unaligned memory accessors over a mapped span
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

package span

import "unsafe"

func copyMem(dst, src unsafe.Pointer, n uintptr) {
	d := unsafe.Slice((*byte)(dst), int(n))
	s := unsafe.Slice((*byte)(src), int(n))
	copy(d, s)
}
