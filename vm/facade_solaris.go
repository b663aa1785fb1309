// facade_solaris.go - Solaris ring-pair allocation
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

//go:build solaris

package vm

const mapPopulate = 0

// allocRingPairOS on Solaris uses the tmpfile+unlink fallback, since
// Solaris's shm_open addresses the filesystem rather than a true anonymous
// object.
func allocRingPairOS(length int64, retries int) (RingPair, error) {
	return allocRingPairViaShm(length, retries)
}
