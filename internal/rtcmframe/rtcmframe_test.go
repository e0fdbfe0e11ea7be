package rtcmframe

import (
	"testing"

	"github.com/gnsslabs/ntrip-rtcm/internal/crc24q"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFrame constructs a well-formed RTCM frame around a 12-bit message
// type followed by arbitrary filler payload bytes.
func buildFrame(msgType uint16, fillerBytes int) []byte {
	payload := make([]byte, 2+fillerBytes)
	payload[0] = byte(msgType >> 4)
	payload[1] = byte(msgType<<4) & 0xF0
	for i := 0; i < fillerBytes; i++ {
		payload[2+i] = byte(i + 1)
	}

	header := []byte{0xD3, byte((len(payload) >> 8) & 0x03), byte(len(payload) & 0xFF)}
	withoutCRC := append(append([]byte{}, header...), payload...)
	crc := crc24q.Checksum(withoutCRC)

	frame := append(withoutCRC, byte(crc>>16), byte(crc>>8), byte(crc))
	return frame
}

func TestFeedSingleWellFormedFrame(t *testing.T) {
	raw := buildFrame(1005, 10)
	p := New()
	frames := p.Feed(raw)

	require.Len(t, frames, 1)
	assert.Equal(t, uint16(1005), frames[0].MessageType)
	assert.True(t, frames[0].CRCValid)
	assert.Equal(t, raw, frames[0].Raw)
}

func TestFeedFrameSplitAcrossReads(t *testing.T) {
	raw := buildFrame(1077, 40)
	p := New()

	var frames []Frame
	for i := 0; i < len(raw); i++ {
		frames = append(frames, p.Feed(raw[i:i+1])...)
	}

	require.Len(t, frames, 1)
	assert.Equal(t, uint16(1077), frames[0].MessageType)
	assert.True(t, frames[0].CRCValid)
}

func TestFeedSkipsNoiseBeforePreamble(t *testing.T) {
	raw := buildFrame(1006, 5)
	noisy := append([]byte{0x00, 0xFF, 0xAA}, raw...)

	p := New()
	frames := p.Feed(noisy)

	require.Len(t, frames, 1)
	assert.Equal(t, uint16(1006), frames[0].MessageType)
}

func TestFeedTwoConsecutiveFrames(t *testing.T) {
	a := buildFrame(1019, 60)
	b := buildFrame(1033, 8)

	p := New()
	frames := p.Feed(append(a, b...))

	require.Len(t, frames, 2)
	assert.Equal(t, uint16(1019), frames[0].MessageType)
	assert.Equal(t, uint16(1033), frames[1].MessageType)
}

func TestFeedFlagsCRCMismatchWithoutDroppingFrame(t *testing.T) {
	raw := buildFrame(1008, 12)
	corrupted := append([]byte{}, raw...)
	corrupted[len(corrupted)-1] ^= 0xFF // flip a CRC byte

	p := New()
	frames := p.Feed(corrupted)

	require.Len(t, frames, 1)
	assert.False(t, frames[0].CRCValid)
	assert.Equal(t, uint16(1008), frames[0].MessageType)
}

func TestResetsOnDeclaredLengthOverflow(t *testing.T) {
	// The 10-bit length field can never legally declare a target_len above
	// BufferCap (max is 6+1023=1029), so this exercises the defensive
	// reset path directly by forcing parser state as if a corrupt length
	// field were observed.
	p := New()
	p.st = accumulating
	p.buf = append(p.buf, 0xD3, 0xFF, 0xFF)
	p.targetLen = BufferCap + 1

	frame, ok := p.step(0x00)
	assert.False(t, ok)
	assert.Equal(t, Frame{}, frame)
	assert.Equal(t, searchingPreamble, p.st)
	assert.Equal(t, 0, p.targetLen)
}

func TestFeedResyncsAfterGarbageFrameCompletes(t *testing.T) {
	p := New()
	// Garbage that looks like a preamble but carries a short declared
	// length; it completes as its own (CRC-invalid) frame and the parser
	// must return to scanning afterward rather than staying wedged.
	garbage := []byte{0xD3, 0x00, 0x01, 0xAA, 0xBB, 0xCC, 0xDD}
	good := buildFrame(1045, 20)

	frames := p.Feed(append(garbage, good...))

	require.Len(t, frames, 2)
	assert.False(t, frames[0].CRCValid)
	assert.Equal(t, uint16(1045), frames[1].MessageType)
	assert.True(t, frames[1].CRCValid)
}

func TestFeedEmptyInputYieldsNoFrames(t *testing.T) {
	p := New()
	frames := p.Feed(nil)
	assert.Empty(t, frames)
}

func TestFeedMaxPayloadLength(t *testing.T) {
	raw := buildFrame(1097, 1021) // 2 header-type bytes + 1021 filler = 1023 payload bytes
	p := New()
	frames := p.Feed(raw)

	require.Len(t, frames, 1)
	assert.True(t, frames[0].CRCValid)
	assert.Len(t, frames[0].Payload, 1023)
}
