package rtcmdecode

import (
	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

// perSatelliteBitsGLONASS is the bit width of one full satellite block in
// a type 1012 message: slot id, L1 code indicator/pseudorange/phase/lock
// /ambiguity/CNR, plus the L2 counterparts.
const perSatelliteBitsGLONASS = 6 + 1 + 25 + 20 + 7 + 7 + 8 + 2 + 14 + 20 + 7 + 8

// decode1012 handles GLONASS L1&L2 RTK observables: a short header
// followed by one block per satellite.
func decode1012(payload []byte, sink outsink.Sink) error {
	const headerBits = 12 + 12 + 27 + 1 + 6 + 1 + 3
	if len(payload)*8 < headerBits {
		return ErrPayloadTooShort
	}

	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12
	epochTime := bitreader.GetBits(payload, pos, 27)
	pos += 27
	syncFlag := bitreader.GetBits(payload, pos, 1)
	pos++
	numSats := bitreader.GetBits(payload, pos, 6)
	pos += 6
	smoothing := bitreader.GetBits(payload, pos, 1)
	pos++
	smoothingInterval := bitreader.GetBits(payload, pos, 3)
	pos += 3

	outsink.Printf(sink, "RTCM 1012 (GLONASS L1&L2 RTK Observables):\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  Epoch Time: %d\n", epochTime)
	outsink.Printf(sink, "  Synchronous GNSS Flag: %d\n", syncFlag)
	outsink.Printf(sink, "  Number of GLONASS Satellites: %d\n", numSats)
	outsink.Printf(sink, "  Smoothing: %d, Interval: %d\n", smoothing, smoothingInterval)

	for i := uint64(0); i < numSats; i++ {
		if pos+perSatelliteBitsGLONASS > len(payload)*8 {
			return ErrPayloadTooShort
		}
		satID := bitreader.GetBits(payload, pos, 6)
		pos += 6
		l1CodeInd := bitreader.GetBits(payload, pos, 1)
		pos++
		l1Pseudorange := bitreader.GetBits(payload, pos, 25)
		pos += 25
		l1PhaseRange := bitreader.GetSigned(payload, pos, 20)
		pos += 20
		l1LockTime := bitreader.GetBits(payload, pos, 7)
		pos += 7
		l1Ambiguity := bitreader.GetBits(payload, pos, 7)
		pos += 7
		l1CNR := bitreader.GetBits(payload, pos, 8)
		pos += 8

		l2CodeInd := bitreader.GetBits(payload, pos, 2)
		pos += 2
		l2PseudorangeDiff := bitreader.GetSigned(payload, pos, 14)
		pos += 14
		l2PhaseRangeDiff := bitreader.GetSigned(payload, pos, 20)
		pos += 20
		l2LockTime := bitreader.GetBits(payload, pos, 7)
		pos += 7
		l2CNR := bitreader.GetBits(payload, pos, 8)
		pos += 8

		outsink.Printf(sink, "  Satellite %d: slot=%d L1[code=%d pr=%d ph=%d lock=%d amb=%d cnr=%d] L2[code=%d pr_diff=%d ph_diff=%d lock=%d cnr=%d]\n",
			i+1, satID, l1CodeInd, l1Pseudorange, l1PhaseRange, l1LockTime, l1Ambiguity, l1CNR,
			l2CodeInd, l2PseudorangeDiff, l2PhaseRangeDiff, l2LockTime, l2CNR)
	}
	return nil
}
