package rtcmstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFirstObservationHasNoDelta(t *testing.T) {
	a := New()
	a.Record(1005, 100.0)

	stats, _ := a.Snapshot()
	s := stats[1005]
	require.True(t, s.Seen)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0.0, s.MinDT)
	assert.Equal(t, 0.0, s.MaxDT)
}

func TestRecordAccumulatesMinMaxSum(t *testing.T) {
	a := New()
	a.Record(1077, 0.0)
	a.Record(1077, 1.0) // dt=1
	a.Record(1077, 3.5) // dt=2.5
	a.Record(1077, 4.0) // dt=0.5

	stats, _ := a.Snapshot()
	s := stats[1077]
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 0.5, s.MinDT, 1e-9)
	assert.InDelta(t, 2.5, s.MaxDT, 1e-9)
	assert.InDelta(t, 4.0, s.SumDT, 1e-9)
	assert.InDelta(t, 4.0, s.LastSeen, 1e-9)
}

func TestRecordOutOfRangeTypeIgnored(t *testing.T) {
	a := New()
	a.Record(MaxMessageType, 1.0)
	a.Record(MaxMessageType+5, 1.0)
	stats, _ := a.Snapshot()
	_ = stats // no panic, nothing recorded anywhere observable beyond bounds
}

// buildMSMPayload synthesizes a minimal MSM payload with a 12-bit message
// type, then the fixed 61-bit prelude, a satellite mask, and a signal
// mask, matching the field widths in the decoder's header schema.
func buildMSMPayload(msgType uint16, satMask uint64, sigMask uint32) []byte {
	// 12 (type) + 61 (prelude) + 64 (sat mask) + 32 (sig mask) = 169 bits.
	totalBits := 12 + 61 + 64 + 32
	buf := make([]byte, (totalBits+7)/8)

	pos := 0
	putBits(buf, &pos, uint64(msgType), 12)
	putBits(buf, &pos, 0, 61) // station id/epoch/flags prelude, all zero
	putBits(buf, &pos, satMask, 64)
	putBits(buf, &pos, uint64(sigMask), 32)

	return buf
}

func putBits(buf []byte, pos *int, value uint64, bitLen int) {
	for i := bitLen - 1; i >= 0; i-- {
		bit := (value >> uint(i)) & 1
		idx := *pos
		if bit == 1 {
			buf[idx/8] |= 1 << uint(7-idx%8)
		}
		*pos++
	}
}

func TestRecordSatellitesMSMMaskProperty(t *testing.T) {
	// Satellite mask with bit 0 (PRN 1) and bit 63 (PRN 64) set: two
	// satellites. Signal mask with bit 0 and bit 31 set: two signals.
	satMask := uint64(0x8000000000000001)
	sigMask := uint32(0x80000001)

	payload := buildMSMPayload(1077, satMask, sigMask)

	a := New()
	a.RecordSatellites(payload, 1077)

	_, sats := a.Snapshot()
	gps, ok := sats[GPS]
	require.True(t, ok)
	assert.Equal(t, 2, gps.DistinctCount())
}

func TestRecordSatellitesUnknownTypeIgnored(t *testing.T) {
	payload := buildMSMPayload(9999, 0x1, 0x1)
	a := New()
	a.RecordSatellites(payload, 9999)

	_, sats := a.Snapshot()
	assert.Empty(t, sats)
}

func TestRecordSatellitesAccumulatesAcrossConstellations(t *testing.T) {
	a := New()
	a.RecordSatellites(buildMSMPayload(1077, 0x1, 0x1), 1077) // GPS: 1 satellite flagged
	a.RecordSatellites(buildMSMPayload(1087, 0x3, 0x1), 1087) // GLONASS: 2 satellites flagged

	_, sats := a.Snapshot()
	require.Contains(t, sats, GPS)
	require.Contains(t, sats, GLONASS)
	assert.Equal(t, 1, sats[GPS].DistinctCount())
	assert.Equal(t, 2, sats[GLONASS].DistinctCount())
}

func TestGnssSatStatsObserveIgnoresOutOfRangePRN(t *testing.T) {
	g := &GnssSatStats{ConstellationID: GPS}
	g.Observe(0)
	g.Observe(65)
	assert.Equal(t, 0, g.DistinctCount())
}
