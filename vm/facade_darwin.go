// facade_darwin.go - macOS ring-pair allocation
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

//go:build darwin

package vm

const mapPopulate = 0

// allocRingPairOS on macOS backs the ring with an unlinked temporary file
// (allocRingPairViaShm), then does the same double-mapping dance as Linux.
// shm_open is not used on this platform.
func allocRingPairOS(length int64, retries int) (RingPair, error) {
	return allocRingPairViaShm(length, retries)
}
