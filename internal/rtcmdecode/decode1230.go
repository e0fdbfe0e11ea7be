package rtcmdecode

import (
	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

// decode1230 handles GLONASS code-phase biases: a per-satellite list of
// (slot id, signed 16-bit bias) pairs at 0.01 ns resolution.
func decode1230(payload []byte, sink outsink.Sink) error {
	const headerBits = 12 + 12 + 6
	if len(payload)*8 < headerBits {
		return ErrPayloadTooShort
	}

	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12
	numSats := bitreader.GetBits(payload, pos, 6)
	pos += 6

	outsink.Printf(sink, "RTCM 1230 (GLONASS L1/L2 Code-Phase Biases):\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  Number of Satellites: %d\n", numSats)

	for i := uint64(0); i < numSats; i++ {
		if pos+22 > len(payload)*8 {
			outsink.Printf(sink, "  [WARN] not enough data for satellite %d\n", i+1)
			break
		}
		slotID := bitreader.GetBits(payload, pos, 6)
		pos += 6
		bias := bitreader.GetSigned(payload, pos, 16)
		pos += 16

		outsink.Printf(sink, "    satellite %d: slot=%d bias=%.2f ns\n", i+1, slotID, float64(bias)*0.01)
	}
	return nil
}
