package msp

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/google/go-cmp/cmp"
)

// TestFuzzHeaderRoundTrip exercises FormatHeader/decodeHeader/FCSValid over
// randomized opcodes, frame IDs and lengths, checking that anything this
// codec formats is also accepted as valid and decodes back to the same
// logical header.
func TestFuzzHeaderRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	c := NewFrameCodec(0x35, 512)

	for i := 0; i < 500; i++ {
		var op byte
		var frameID byte
		var dl uint32
		f.Fuzz(&op)
		f.Fuzz(&frameID)
		f.Fuzz(&dl)

		opcode := Opcode(op & 0x7F)
		buf := make([]byte, HeaderSize)
		c.FormatHeader(buf, opcode, frameID, dl)

		if !c.FCSValid(buf, false) {
			t.Fatalf("formatted header failed its own FCS check: opcode=%v frameID=%d dl=%d", opcode, frameID, dl)
		}

		got := decodeHeader(buf)
		want := decodedHeader{opcode: opcode, frameID: frameID & 1, dl: dl}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(decodedHeader{})); diff != "" {
			t.Fatalf("decodeHeader mismatch (-want +got):\n%s", diff)
		}
	}
}

// TestFuzzDataFrameRoundTrip does the same for data frames with random
// payload bytes, cycling the payload size through 1..MTU.
func TestFuzzDataFrameRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	c := NewFrameCodec(0x12, 64)

	for i := 0; i < 200; i++ {
		var frameID byte
		f.Fuzz(&frameID)

		payloadLen := i%int(c.MTU) + 1
		payload := make([]byte, payloadLen)
		f.NumElements(payloadLen, payloadLen).Fuzz(&payload)

		buf := make([]byte, c.MinBufferSize())
		copy(buf[1:], payload)
		n := c.FormatData(buf, frameID, payloadLen)
		frame := buf[:n]

		if !c.FCSValid(frame, false) {
			t.Fatalf("formatted data frame failed its own FCS check: frameID=%d len=%d", frameID, payloadLen)
		}
		if diff := cmp.Diff(payload, frame[1:1+payloadLen]); diff != "" {
			t.Fatalf("payload mismatch (-want +got):\n%s", diff)
		}
	}
}

// TestFuzzSingleBitCorruptionInvalidatesFCS checks that flipping any single
// bit of a formatted header always invalidates its FCS, the basic guarantee
// the CRC exists to provide.
func TestFuzzSingleBitCorruptionInvalidatesFCS(t *testing.T) {
	c := NewFrameCodec(0x35, 64)
	buf := make([]byte, HeaderSize)
	c.FormatHeader(buf, OpReqHK, 1, 99)

	for byteIdx := range buf {
		for bit := 0; bit < 8; bit++ {
			corrupt := append([]byte(nil), buf...)
			corrupt[byteIdx] ^= 1 << uint(bit)
			if c.FCSValid(corrupt, false) {
				t.Fatalf("single-bit corruption at byte %d bit %d went undetected", byteIdx, bit)
			}
		}
	}
}
