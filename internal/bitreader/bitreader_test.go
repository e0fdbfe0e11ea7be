package bitreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBits writes value (bitLen bits) into buf starting at startBit,
// MSB-first. It's the encode half of the round-trip property test.
func writeBits(buf []byte, startBit, bitLen int, value uint64) {
	for i := 0; i < bitLen; i++ {
		bit := (value >> uint(bitLen-1-i)) & 1
		pos := startBit + i
		byteIdx := pos / 8
		bitIdx := 7 - uint(pos%8)
		if bit == 1 {
			buf[byteIdx] |= 1 << bitIdx
		} else {
			buf[byteIdx] &^= 1 << bitIdx
		}
	}
}

func TestGetBitsRoundTrip(t *testing.T) {
	cases := []struct {
		startBit int
		bitLen   int
		value    uint64
	}{
		{0, 1, 1},
		{0, 8, 0xAB},
		{3, 12, 0xABC},
		{7, 1, 1},
		{56, 8, 0xFF},
		{0, 64, 0xFEDCBA9876543210},
		{1, 38, 0x1FFFFFFFFF},
		{4, 30, 1<<30 - 1},
	}

	for _, c := range cases {
		buf := make([]byte, 16)
		writeBits(buf, c.startBit, c.bitLen, c.value)
		got := GetBits(buf, c.startBit, c.bitLen)
		assert.Equalf(t, c.value, got, "startBit=%d bitLen=%d", c.startBit, c.bitLen)
	}
}

func TestGetBitsRoundTripExhaustive(t *testing.T) {
	for startBit := 0; startBit <= 56; startBit += 7 {
		for bitLen := 1; bitLen <= 64; bitLen++ {
			var maxVal uint64
			if bitLen == 64 {
				maxVal = ^uint64(0)
			} else {
				maxVal = (uint64(1) << uint(bitLen)) - 1
			}
			for _, value := range []uint64{0, maxVal, maxVal / 2, 1} {
				buf := make([]byte, 16)
				writeBits(buf, startBit, bitLen, value)
				got := GetBits(buf, startBit, bitLen)
				require.Equalf(t, value, got, "startBit=%d bitLen=%d value=%d", startBit, bitLen, value)
			}
		}
	}
}

func TestGetSignedPositive(t *testing.T) {
	buf := make([]byte, 8)
	writeBits(buf, 0, 14, 100)
	assert.EqualValues(t, 100, GetSigned(buf, 0, 14))
}

func TestGetSignedNegative(t *testing.T) {
	buf := make([]byte, 8)
	// -1 encoded as 14-bit two's complement is all 1s.
	writeBits(buf, 0, 14, (1<<14)-1)
	assert.EqualValues(t, -1, GetSigned(buf, 0, 14))
}

func TestGetSignedAcrossSignBitBoundary(t *testing.T) {
	cases := []struct {
		bitLen int
		value  int64
	}{
		{14, -8192},
		{14, 8191},
		{16, -32768},
		{20, -524288},
		{22, -2097152},
		{24, -8388608},
		{32, -2147483648},
		{38, -137438953472},
	}

	for _, c := range cases {
		buf := make([]byte, 10)
		var raw uint64
		if c.value < 0 {
			raw = uint64(c.value) & ((uint64(1) << uint(c.bitLen)) - 1)
		} else {
			raw = uint64(c.value)
		}
		writeBits(buf, 2, c.bitLen, raw)
		got := GetSigned(buf, 2, c.bitLen)
		assert.Equalf(t, c.value, got, "bitLen=%d", c.bitLen)
	}
}

func TestGetBits64BitField(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), GetBits(buf, 0, 64))
}
