package ntrip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormatFromSourcetable(t *testing.T) {
	cases := []struct {
		format, details string
		want            StreamFormat
	}{
		{"RTCM 3.3", "1005(1),1077(1)", FormatRTCM3x},
		{"RTCM3", "", FormatRTCM3x},
		{"UBX", "u-blox binary", FormatUBX},
		{"RAW", "Septentrio SBF", FormatSBF},
		{"RAW", "Trimble RT27", FormatRT27},
		{"RAW", "Leica LB2", FormatLB2},
		{"Unknown", "", FormatUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetectFormatFromSourcetable(c.format, c.details))
	}
}

func TestSniffFormat(t *testing.T) {
	assert.Equal(t, FormatUBX, SniffFormat([]byte{0xB5, 0x62, 0x01, 0x02}))
	assert.Equal(t, FormatSBF, SniffFormat([]byte("$@somepayload")))
	assert.Equal(t, FormatUnknown, SniffFormat([]byte{0xD3, 0x00}))
	assert.Equal(t, FormatUnknown, SniffFormat([]byte{0xB5}))
}

func TestFormatCountersSnapshot(t *testing.T) {
	fc := newFormatCounters()
	fc.add(FormatRTCM3x, 100)
	fc.add(FormatRTCM3x, 50)
	fc.add(FormatUBX, 10)

	snap := fc.snapshot()
	assert.Equal(t, uint64(150), snap[FormatRTCM3x])
	assert.Equal(t, uint64(10), snap[FormatUBX])
	assert.Equal(t, uint64(0), snap[FormatSBF])
	assert.Equal(t, uint64(160), uint64(fc.total))
}
