// Package rtcmdecode interprets a validated RTCM 3.x frame payload per
// message-type schema and emits a textual summary through an
// outsink.Sink. The per-type field layouts are grounded on
// original_source/src/rtcm3x_parser.c's decode_rtcm_NNNN functions; the
// MSM satellite/signal extraction delegates to internal/rtcmdecode/msm.
package rtcmdecode

import (
	"errors"
	"fmt"

	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
	"github.com/gnsslabs/ntrip-rtcm/internal/rtcmframe"
)

// Dispatch errors, per the §4.5.2 contract.
var (
	ErrUnrecognizedPreamble = errors.New("rtcmdecode: first byte is not 0xD3")
	ErrTruncated            = errors.New("rtcmdecode: frame shorter than declared length")
	ErrPayloadTooShort      = errors.New("rtcmdecode: payload too short for this message's schema")
	ErrCRCMismatch          = errors.New("rtcmdecode: frame failed CRC-24Q validation")
)

// Config carries the rover position used for distance/bearing-to-base
// display in 1005/1006 decoding. A zero-value Config (HasRover false)
// omits that line, matching the original's optional config pointer.
type Config struct {
	HasRover      bool
	RoverLat      float64
	RoverLon      float64
}

// Decode dispatches a frame on its 12-bit message type, writes a textual
// summary to sink, and returns the message type. It never decodes
// generic/unsupported types beyond printing the header line; that mirrors
// the original's behavior of always reporting type and length even when
// no specialized decoder exists.
func Decode(frame rtcmframe.Frame, cfg Config, sink outsink.Sink) (uint16, error) {
	if len(frame.Raw) == 0 || frame.Raw[0] != 0xD3 {
		return 0, ErrUnrecognizedPreamble
	}
	declaredLen := 6 + ((int(frame.Raw[1]) & 0x03 << 8) | int(frame.Raw[2]))
	if len(frame.Raw) < declaredLen {
		return 0, ErrTruncated
	}

	msgType := frame.MessageType
	outsink.Printf(sink, "\nRTCM Message: Type = %d, Length = %d, CRC valid = %t\n",
		msgType, len(frame.Payload), frame.CRCValid)

	// A CRC-invalid frame still reports its type and length above (the
	// caller's rtcmstats.Aggregator.Record call happens independently of
	// this function), but no specialized decoder runs against payload bytes
	// that failed integrity validation.
	if !frame.CRCValid {
		return msgType, fmt.Errorf("rtcmdecode: type %d: %w", msgType, ErrCRCMismatch)
	}

	var err error
	switch msgType {
	case 1005:
		err = decode1005(frame.Payload, cfg, sink)
	case 1006:
		err = decode1006(frame.Payload, cfg, sink)
	case 1007:
		err = decodeAntennaDescriptor(frame.Payload, sink, 1007)
	case 1008:
		err = decodeAntennaDescriptorSerial(frame.Payload, sink)
	case 1012:
		err = decode1012(frame.Payload, sink)
	case 1013:
		err = decode1013(frame.Payload, sink)
	case 1019:
		err = decode1019(frame.Payload, sink)
	case 1033:
		err = decode1033(frame.Payload, sink)
	case 1045:
		err = decode1045(frame.Payload, sink)
	case 1230:
		err = decode1230(frame.Payload, sink)
	case 1074:
		err = decodeMSM4(frame.Payload, sink, "GPS")
	case 1084:
		err = decodeMSM4(frame.Payload, sink, "GLONASS")
	case 1094:
		err = decodeMSM4(frame.Payload, sink, "Galileo")
	case 1124:
		err = decodeMSM4(frame.Payload, sink, "QZSS")
	case 1077:
		err = decodeMSM7(frame.Payload, sink, "GPS")
	case 1087:
		err = decodeMSM7(frame.Payload, sink, "GLONASS")
	case 1097:
		err = decodeMSM7(frame.Payload, sink, "Galileo")
	case 1117:
		err = decodeMSM7(frame.Payload, sink, "QZSS")
	case 1127:
		err = decodeMSM7(frame.Payload, sink, "BeiDou")
	case 1137:
		err = decodeMSM7(frame.Payload, sink, "SBAS")
	default:
		// No specialized decoder; the header line above is the full
		// summary, matching the original's fallback branch.
	}

	if err != nil {
		return msgType, fmt.Errorf("rtcmdecode: type %d: %w", msgType, err)
	}
	return msgType, nil
}
