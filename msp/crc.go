package msp

import "hash/crc32"

// crc32Update runs the reflected CRC-32 algorithm (polynomial 0xEDB88320)
// over data, continuing from the remainder start. Unlike the standard
// CRC-32 checksum, no pre- or post-complement is applied: callers that want
// a checksum "from scratch" pass start = 0, and the returned remainder is
// used directly as the FCS. This lets the FCS be computed over logically
// concatenated regions (the pseudo-header, then the frame body) by
// threading the remainder between calls.
//
// crc32.IEEETable uses this same polynomial, so it is reused here for the
// table lookup; the stdlib crc32 package itself cannot be used directly
// because its Checksum/Update functions always apply the standard
// complement-in/complement-out steps MSP's FCS does not want.
func crc32Update(start uint32, data []byte) uint32 {
	crc := start
	for _, b := range data {
		crc = crc32.IEEETable[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}
