// Package msm decodes the Multiple Signal Message header and satellite
// mask/signal mask/cell mask structure shared by the MSM4 and MSM7 message
// families, grounded on the teacher pack's goblimey/go-ntrip/rtcm/header
// package and on original_source's decode_rtcm_msm7_full / decode_rtcm_msm4_generic.
package msm

import "github.com/gnsslabs/ntrip-rtcm/internal/bitreader"

const (
	lenMessageType        = 12
	lenStationID          = 12
	lenEpochTime          = 30
	lenMultipleMessage    = 1
	lenIODS               = 3
	lenReserved           = 7
	lenClockSteering      = 2
	lenExternalClock      = 2
	lenDivergenceFree     = 1
	lenSmoothingInterval  = 3
	lenSatelliteMask      = 64
	lenSignalMask         = 32

	// HeaderBits is the bit length of the fixed prelude up to and
	// including the signal mask, counted from the start of the payload
	// (which begins with the 12-bit message type).
	HeaderBits = lenMessageType + lenStationID + lenEpochTime +
		lenMultipleMessage + lenIODS + lenReserved + lenClockSteering +
		lenExternalClock + lenDivergenceFree + lenSmoothingInterval +
		lenSatelliteMask + lenSignalMask
)

// Header holds the fields common to every MSM message type, plus the
// satellite/signal/cell lists derived from the three masks.
type Header struct {
	MessageType             uint16
	StationID               uint16
	EpochTimeMS             uint32
	MultipleMessage         bool
	IODS                    uint8
	ClockSteering           uint8
	ExternalClock           uint8
	DivergenceFreeSmoothing bool
	SmoothingInterval       uint8

	SatMask uint64
	SigMask uint32

	// Satellites holds the 1-based PRN for each satellite flagged in the
	// mask, in mask order (MSB to LSB).
	Satellites []int
	// Signals holds the 1-based signal id for each signal flagged in the
	// mask, in mask order.
	Signals []int
	// Cells[i][j] is true when satellite Satellites[i] reported an
	// observation on Signals[j].
	Cells [][]bool

	// BitsConsumed is the total bit length of the header plus the cell
	// mask; satellite and signal data blocks start at this offset.
	BitsConsumed int
}

// NumCells returns the number of set bits in the cell mask.
func (h Header) NumCells() int {
	n := 0
	for _, row := range h.Cells {
		for _, set := range row {
			if set {
				n++
			}
		}
	}
	return n
}

// ParseHeader reads the MSM header and mask structure starting at bit 0 of
// payload (which still contains the 12-bit message type). The bit offset
// immediately after the cell mask, where the caller's satellite-data and
// signal-data blocks begin, is recorded in the returned Header.BitsConsumed.
func ParseHeader(payload []byte) (Header, error) {
	if len(payload)*8 < HeaderBits {
		return Header{}, ErrPayloadTooShort
	}

	pos := 0
	h := Header{}

	h.MessageType = uint16(bitreader.GetBits(payload, pos, lenMessageType))
	pos += lenMessageType

	h.StationID = uint16(bitreader.GetBits(payload, pos, lenStationID))
	pos += lenStationID

	h.EpochTimeMS = uint32(bitreader.GetBits(payload, pos, lenEpochTime))
	pos += lenEpochTime

	h.MultipleMessage = bitreader.GetBits(payload, pos, lenMultipleMessage) != 0
	pos += lenMultipleMessage

	h.IODS = uint8(bitreader.GetBits(payload, pos, lenIODS))
	pos += lenIODS

	pos += lenReserved

	h.ClockSteering = uint8(bitreader.GetBits(payload, pos, lenClockSteering))
	pos += lenClockSteering

	h.ExternalClock = uint8(bitreader.GetBits(payload, pos, lenExternalClock))
	pos += lenExternalClock

	h.DivergenceFreeSmoothing = bitreader.GetBits(payload, pos, lenDivergenceFree) != 0
	pos += lenDivergenceFree

	h.SmoothingInterval = uint8(bitreader.GetBits(payload, pos, lenSmoothingInterval))
	pos += lenSmoothingInterval

	h.SatMask = bitreader.GetBits(payload, pos, lenSatelliteMask)
	pos += lenSatelliteMask

	h.SigMask = uint32(bitreader.GetBits(payload, pos, lenSignalMask))
	pos += lenSignalMask

	for i := 0; i < 64; i++ {
		if h.SatMask&(uint64(1)<<uint(63-i)) != 0 {
			h.Satellites = append(h.Satellites, i+1)
		}
	}
	for i := 0; i < 32; i++ {
		if h.SigMask&(uint32(1)<<uint(31-i)) != 0 {
			h.Signals = append(h.Signals, i+1)
		}
	}

	cellBits := len(h.Satellites) * len(h.Signals)
	if pos+cellBits > len(payload)*8 {
		return Header{}, ErrPayloadTooShort
	}

	h.Cells = make([][]bool, len(h.Satellites))
	for s := range h.Satellites {
		h.Cells[s] = make([]bool, len(h.Signals))
		for g := range h.Signals {
			h.Cells[s][g] = bitreader.GetBits(payload, pos, 1) != 0
			pos++
		}
	}

	h.BitsConsumed = pos
	return h, nil
}
