package rtcmdecode

import (
	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

// readASCIIField reads an 8-bit length prefix followed by that many ASCII
// bytes, returning the string and the bit position immediately after it.
func readASCIIField(payload []byte, pos int) (string, int, error) {
	if pos+8 > len(payload)*8 {
		return "", pos, ErrPayloadTooShort
	}
	length := int(bitreader.GetBits(payload, pos, 8))
	pos += 8
	if pos+length*8 > len(payload)*8 {
		return "", pos, ErrPayloadTooShort
	}
	b := make([]byte, length)
	for i := 0; i < length; i++ {
		b[i] = byte(bitreader.GetBits(payload, pos, 8))
		pos += 8
	}
	return string(b), pos, nil
}

// decodeAntennaDescriptor handles message type 1007: station id + a
// single length-prefixed descriptor string + 8-bit setup id.
func decodeAntennaDescriptor(payload []byte, sink outsink.Sink, msgType uint16) error {
	if len(payload)*8 < 12+12+8 {
		return ErrPayloadTooShort
	}
	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12

	descriptor, pos, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}

	if pos+8 > len(payload)*8 {
		return ErrPayloadTooShort
	}
	setupID := bitreader.GetBits(payload, pos, 8)

	outsink.Printf(sink, "RTCM %d:\n", msgType)
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  Antenna Descriptor: %s\n", descriptor)
	outsink.Printf(sink, "  Antenna Setup ID: %d\n", setupID)
	return nil
}

// decodeAntennaDescriptorSerial handles message type 1008: station id +
// descriptor string + serial-number string (no setup id).
func decodeAntennaDescriptorSerial(payload []byte, sink outsink.Sink) error {
	if len(payload)*8 < 12+12+8 {
		return ErrPayloadTooShort
	}
	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12

	descriptor, pos, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}
	serial, _, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}

	outsink.Printf(sink, "RTCM 1008:\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  Antenna Descriptor: %s\n", descriptor)
	outsink.Printf(sink, "  Antenna Serial Number: %s\n", serial)
	return nil
}

// decode1033 handles message type 1033: station id + four length-prefixed
// ASCII strings (antenna descriptor, antenna serial, receiver type,
// receiver serial).
func decode1033(payload []byte, sink outsink.Sink) error {
	if len(payload)*8 < 12+12+8 {
		return ErrPayloadTooShort
	}
	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12

	antennaDesc, pos, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}
	antennaSerial, pos, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}
	receiverType, pos, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}
	receiverSerial, _, err := readASCIIField(payload, pos)
	if err != nil {
		return err
	}

	outsink.Printf(sink, "RTCM 1033:\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  Antenna Descriptor: %s\n", antennaDesc)
	outsink.Printf(sink, "  Antenna Serial Number: %s\n", antennaSerial)
	outsink.Printf(sink, "  Receiver Type: %s\n", receiverType)
	outsink.Printf(sink, "  Receiver Serial Number: %s\n", receiverSerial)
	return nil
}
