// facade_bsd.go - BSD ring-pair allocation
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

//go:build freebsd || openbsd || netbsd || dragonfly

package vm

const mapPopulate = 0

// allocRingPairOS on the BSDs uses the same tmpfile+unlink backing as
// Darwin and Solaris (allocRingPairViaShm). shm_open is not used on these
// platforms.
func allocRingPairOS(length int64, retries int) (RingPair, error) {
	return allocRingPairViaShm(length, retries)
}
