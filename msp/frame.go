package msp

// HeaderSize is the fixed size, in bytes, of an MSP header frame.
const HeaderSize = 9

// minDataFrameSize is the smallest possible data frame: 1 opcode/frame-ID
// byte, at least 1 byte of payload, and a 4-byte FCS.
const minDataFrameSize = 6

// FrameCodec encodes and validates MSP frames for one experiment address.
// It never allocates: all buffers are caller-provided. The zero value is not
// usable; construct with NewFrameCodec.
type FrameCodec struct {
	// ExpAddr is the experiment's 7-bit address, used only to build the
	// FCS pseudo-header. It is never transmitted on the wire.
	ExpAddr byte

	// MTU is the maximum payload, in bytes, of a single data frame.
	MTU uint32
}

// NewFrameCodec returns a FrameCodec for the given experiment address and
// MTU. expAddr is masked to 7 bits.
func NewFrameCodec(expAddr byte, mtu uint32) *FrameCodec {
	return &FrameCodec{ExpAddr: expAddr & 0x7F, MTU: mtu}
}

// MinBufferSize returns the minimum size a caller-provided frame buffer must
// have to hold any frame this codec can produce or accept: max(MTU+5, 9).
func (c *FrameCodec) MinBufferSize() int {
	n := int(c.MTU) + 5
	if n < HeaderSize {
		n = HeaderSize
	}
	return n
}

// GenerateFCS computes the FCS over data, which must contain the frame bytes
// up to but excluding the FCS field itself (5 bytes for a header, 1+N for a
// data frame). fromOBC selects the pseudo-header direction bit: pass false
// when formatting an outbound frame, true when validating an inbound one.
func (c *FrameCodec) GenerateFCS(data []byte, fromOBC bool) uint32 {
	pseudoHeader := c.ExpAddr << 1
	if !fromOBC {
		pseudoHeader |= 0x01
	}
	remainder := crc32Update(0, []byte{pseudoHeader})
	return crc32Update(remainder, data)
}

// FCSValid reports whether the last 4 bytes of frame, read big-endian,
// match the FCS computed over the preceding bytes.
func (c *FrameCodec) FCSValid(frame []byte, fromOBC bool) bool {
	if len(frame) < 4 {
		return false
	}
	body := frame[:len(frame)-4]
	expected := unpackBE32(frame[len(frame)-4:])
	return expected == c.GenerateFCS(body, fromOBC)
}

// FormatHeader writes a 9-byte header frame into dst: opcode and frame-ID in
// byte 0, dl big-endian in bytes 1-4, and the FCS (computed as an outbound
// frame) in bytes 5-8. dst must have at least HeaderSize bytes.
func (c *FrameCodec) FormatHeader(dst []byte, opcode Opcode, frameID byte, dl uint32) {
	dst[0] = byte(opcode)&0x7F | (frameID&1)<<7
	packBE32(dst[1:5], dl)
	fcs := c.GenerateFCS(dst[0:5], false)
	packBE32(dst[5:9], fcs)
}

// FormatEmptyHeader is FormatHeader with frameID = 0 and dl = 0.
func (c *FrameCodec) FormatEmptyHeader(dst []byte, opcode Opcode) {
	c.FormatHeader(dst, opcode, 0, 0)
}

// FormatData writes a data frame's opcode/frame-ID byte and FCS around a
// payload already placed at dst[1 : 1+len(payload)]. It returns the total
// frame length. The caller must have filled dst[1:1+payloadLen] before
// calling this (normally via the SendData upcall).
func (c *FrameCodec) FormatData(dst []byte, frameID byte, payloadLen int) int {
	dst[0] = byte(OpData) | (frameID&1)<<7
	fcs := c.GenerateFCS(dst[0:1+payloadLen], false)
	packBE32(dst[1+payloadLen:1+payloadLen+4], fcs)
	return 1 + payloadLen + 4
}

// decodedHeader is the parsed form of a 9-byte header frame.
type decodedHeader struct {
	opcode  Opcode
	frameID byte
	dl      uint32
}

// decodeHeader parses a 9-byte header frame. The caller must have already
// validated its FCS and length.
func decodeHeader(frame []byte) decodedHeader {
	return decodedHeader{
		opcode:  Opcode(frame[0] & 0x7F),
		frameID: (frame[0] >> 7) & 1,
		dl:      unpackBE32(frame[1:5]),
	}
}
