package msm

import "github.com/gnsslabs/ntrip-rtcm/internal/bitreader"

// MSM4 signal fields use fixed reduced resolution across all four MSM4
// message types (1074/1084/1094/1124), per the schema.
const (
	msm4PseudorangeBits = 15
	msm4PhaseRangeBits  = 22
	msm4PseudorangeScale = 0.02
	msm4PhaseRangeScale  = 0.0005
)

// SatelliteMSM4 is one entry of the MSM4 satellite data block (no extended
// rough-phase-rate field, unlike MSM7).
type SatelliteMSM4 struct {
	PRN          int
	RoughRangeMS int
	ExtendedInfo int
}

// SignalMSM4 is one entry of the MSM4 signal/cell data block.
type SignalMSM4 struct {
	PRN                int
	SignalID           int
	FinePseudorangeM   float64
	FinePhaseRangeM    float64
	LockIndicator      uint8
	HalfCycleAmbiguity bool
	CNR                uint8
}

// DecodeBodyMSM4 reads the satellite and signal/cell data blocks that
// follow an MSM4 header.
func DecodeBodyMSM4(payload []byte, h Header) ([]SatelliteMSM4, []SignalMSM4, error) {
	totalBits := len(payload) * 8
	pos := h.BitsConsumed
	numSats := len(h.Satellites)
	numCells := h.NumCells()

	needed := numSats*(8+4) + numCells*(msm4PseudorangeBits+msm4PhaseRangeBits+4+1+6)
	if pos+needed > totalBits {
		return nil, nil, ErrPayloadTooShort
	}

	roughRange := make([]int, numSats)
	for i := range roughRange {
		roughRange[i] = int(bitreader.GetBits(payload, pos, 8))
		pos += 8
	}
	extInfo := make([]int, numSats)
	for i := range extInfo {
		extInfo[i] = int(bitreader.GetBits(payload, pos, 4))
		pos += 4
	}

	sats := make([]SatelliteMSM4, numSats)
	for i, prn := range h.Satellites {
		sats[i] = SatelliteMSM4{PRN: prn, RoughRangeMS: roughRange[i], ExtendedInfo: extInfo[i]}
	}

	finePR := make([]int32, numCells)
	finePH := make([]int32, numCells)
	lock := make([]uint8, numCells)
	halfCycle := make([]bool, numCells)
	cnr := make([]uint8, numCells)

	for i := range finePR {
		finePR[i] = int32(bitreader.GetSigned(payload, pos, msm4PseudorangeBits))
		pos += msm4PseudorangeBits
	}
	for i := range finePH {
		finePH[i] = int32(bitreader.GetSigned(payload, pos, msm4PhaseRangeBits))
		pos += msm4PhaseRangeBits
	}
	for i := range lock {
		lock[i] = uint8(bitreader.GetBits(payload, pos, 4))
		pos += 4
	}
	for i := range halfCycle {
		halfCycle[i] = bitreader.GetBits(payload, pos, 1) != 0
		pos++
	}
	for i := range cnr {
		cnr[i] = uint8(bitreader.GetBits(payload, pos, 6))
		pos += 6
	}

	signals := make([]SignalMSM4, 0, numCells)
	c := 0
	for s, row := range h.Cells {
		for g, set := range row {
			if !set {
				continue
			}
			signals = append(signals, SignalMSM4{
				PRN:                h.Satellites[s],
				SignalID:           h.Signals[g],
				FinePseudorangeM:   float64(finePR[c]) * msm4PseudorangeScale,
				FinePhaseRangeM:    float64(finePH[c]) * msm4PhaseRangeScale,
				LockIndicator:      lock[c],
				HalfCycleAmbiguity: halfCycle[c],
				CNR:                cnr[c],
			})
			c++
		}
	}

	return sats, signals, nil
}
