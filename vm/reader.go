// reader.go - chunked mmap-based file walker
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

package vm

import (
	"fmt"
	"os"

	"github.com/opencoff/vmem/errs"
)

// Reader mmap's successive chunks of fd, no larger than maxMmapSize each,
// and invokes fp with each chunk's bytes until EOF. If fp returns a non-nil
// error, the walk stops and that error propagates to the caller. Reader
// returns the total number of bytes visited.
//
// Adapted from opencoff-go-mmap's mmap.Reader: a streaming-scan convenience
// that falls outside the mapping/ring primitives themselves but is small
// enough to keep next to the facade it's built from.
func Reader(f *os.File, fp func(buf []byte) error) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, errs.Wrap(errs.Os, "reader", err)
	}

	var off, total int64
	fsz := st.Size()

	for fsz > 0 {
		sz := fsz
		if sz > maxMmapSize {
			sz = maxMmapSize
		}

		ptr, actual, err := Map(f, Request{Offset: off, Len: sz, Prot: Read, Visibility: Shared})
		if err != nil {
			return total, fmt.Errorf("reader: %w", err)
		}

		err = fp(bytesAt(ptr, actual))
		unmapErr := Unmap(ptr, actual)

		if err != nil {
			return total, err
		}
		if unmapErr != nil {
			return total, unmapErr
		}

		off += sz
		total += sz
		fsz -= sz
	}
	return total, nil
}
