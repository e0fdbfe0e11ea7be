package msm

import "github.com/gnsslabs/ntrip-rtcm/internal/bitreader"

// MSM7 signal fields are specified in §4.5.1 as multiples of one
// light-millisecond (2^-29 ms for the 20-bit fine pseudorange, 2^-31 ms for
// the 24-bit fine phase range), not directly in meters the way MSM4's
// reduced-resolution fields are. rangeMS follows FengXuebin-gnssgo's
// RANGE_MS (= CLIGHT * 0.001) and the two scales below mirror its
// encode_msm_psrng_ex/encode_msm_phrng_ex divisors (RANGE_MS * P2_29,
// RANGE_MS * P2_31), applied here in decode direction.
const (
	speedOfLightMPerS          = 299792458.0
	rangeMS                    = speedOfLightMPerS * 0.001
	msm7FinePseudorangeScaleM = rangeMS / (1 << 29)
	msm7FinePhaseRangeScaleM  = rangeMS / (1 << 31)
)

// SatelliteMSM7 is one entry of the MSM7 satellite data block.
type SatelliteMSM7 struct {
	PRN             int
	RoughRangeMS    float64
	ExtendedInfo    int
	RoughPhaseRateMS int
}

// SignalMSM7 is one entry of the MSM7 signal/cell data block.
type SignalMSM7 struct {
	PRN                int
	SignalID           int
	FinePseudorangeM   float64
	FinePhaseRangeM    float64
	LockIndicator      uint16
	HalfCycleAmbiguity bool
	CNRdBHz            float64
	FinePhaseRateMS    float64
}

// DecodeBodyMSM7 reads the satellite and signal/cell data blocks that
// follow an MSM7 header, per the bit widths in the RTCM 10403.3 MSM7
// schema (also the "Comprehensive MSM7 decoder" in original_source's
// rtcm3x_parser.c).
func DecodeBodyMSM7(payload []byte, h Header) ([]SatelliteMSM7, []SignalMSM7, error) {
	totalBits := len(payload) * 8
	pos := h.BitsConsumed
	numSats := len(h.Satellites)
	numCells := h.NumCells()

	needed := numSats*(8+4+10+14) + numCells*(20+24+10+1+10+15)
	if pos+needed > totalBits {
		return nil, nil, ErrPayloadTooShort
	}

	roughRangeInt := make([]int, numSats)
	extInfo := make([]int, numSats)
	roughRangeMod := make([]int, numSats)
	roughPhaseRate := make([]int, numSats)

	for i := range roughRangeInt {
		roughRangeInt[i] = int(bitreader.GetBits(payload, pos, 8))
		pos += 8
	}
	for i := range extInfo {
		extInfo[i] = int(bitreader.GetBits(payload, pos, 4))
		pos += 4
	}
	for i := range roughRangeMod {
		roughRangeMod[i] = int(bitreader.GetBits(payload, pos, 10))
		pos += 10
	}
	for i := range roughPhaseRate {
		roughPhaseRate[i] = int(bitreader.GetSigned(payload, pos, 14))
		pos += 14
	}

	sats := make([]SatelliteMSM7, numSats)
	for i, prn := range h.Satellites {
		sats[i] = SatelliteMSM7{
			PRN:              prn,
			RoughRangeMS:     float64(roughRangeInt[i]) + float64(roughRangeMod[i])/1024.0,
			ExtendedInfo:     extInfo[i],
			RoughPhaseRateMS: roughPhaseRate[i],
		}
	}

	finePR := make([]int32, numCells)
	finePH := make([]int32, numCells)
	lock := make([]uint16, numCells)
	halfCycle := make([]bool, numCells)
	cnr := make([]uint16, numCells)
	finePhaseRate := make([]int32, numCells)

	for i := range finePR {
		finePR[i] = int32(bitreader.GetSigned(payload, pos, 20))
		pos += 20
	}
	for i := range finePH {
		finePH[i] = int32(bitreader.GetSigned(payload, pos, 24))
		pos += 24
	}
	for i := range lock {
		lock[i] = uint16(bitreader.GetBits(payload, pos, 10))
		pos += 10
	}
	for i := range halfCycle {
		halfCycle[i] = bitreader.GetBits(payload, pos, 1) != 0
		pos++
	}
	for i := range cnr {
		cnr[i] = uint16(bitreader.GetBits(payload, pos, 10))
		pos += 10
	}
	for i := range finePhaseRate {
		finePhaseRate[i] = int32(bitreader.GetSigned(payload, pos, 15))
		pos += 15
	}

	signals := make([]SignalMSM7, 0, numCells)
	c := 0
	for s, row := range h.Cells {
		for g, set := range row {
			if !set {
				continue
			}
			signals = append(signals, SignalMSM7{
				PRN:                h.Satellites[s],
				SignalID:           h.Signals[g],
				FinePseudorangeM:   float64(finePR[c]) * msm7FinePseudorangeScaleM,
				FinePhaseRangeM:    float64(finePH[c]) * msm7FinePhaseRangeScaleM,
				LockIndicator:      lock[c],
				HalfCycleAmbiguity: halfCycle[c],
				CNRdBHz:            float64(cnr[c]) * 0.0625,
				FinePhaseRateMS:    float64(finePhaseRate[c]) * 0.0001,
			})
			c++
		}
	}

	return sats, signals, nil
}
