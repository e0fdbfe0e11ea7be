package rtcmdecode

import (
	"math"

	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

// decode1019 handles GPS broadcast ephemeris: a full Keplerian parameter
// set, each field carrying an RTCM-defined power-of-two scale factor.
func decode1019(payload []byte, sink outsink.Sink) error {
	// 12(type)+6+10+4+2+14+8+16+8+16+22+10+16+16+32+16+16+16+16+16+16+32+32+16+1+5+6+8+16 = 404 bits (51 bytes)
	const minBits = 404
	if len(payload)*8 < minBits {
		return ErrPayloadTooShort
	}

	pos := 12
	prn := bitreader.GetBits(payload, pos, 6)
	pos += 6
	gpsWeek := bitreader.GetBits(payload, pos, 10)
	pos += 10
	svAccuracy := bitreader.GetBits(payload, pos, 4)
	pos += 4
	codeOnL2 := bitreader.GetBits(payload, pos, 2)
	pos += 2
	idot := bitreader.GetSigned(payload, pos, 14)
	pos += 14
	iode := bitreader.GetBits(payload, pos, 8)
	pos += 8
	toc := bitreader.GetBits(payload, pos, 16)
	pos += 16
	af2 := bitreader.GetSigned(payload, pos, 8)
	pos += 8
	af1 := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	af0 := bitreader.GetSigned(payload, pos, 22)
	pos += 22
	iodc := bitreader.GetBits(payload, pos, 10)
	pos += 10
	crs := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	deltaN := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	m0 := bitreader.GetSigned(payload, pos, 32)
	pos += 32
	cuc := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	cus := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	crc := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	crs2 := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	cic := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	cis := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	e := bitreader.GetBits(payload, pos, 32)
	pos += 32
	sqrtA := bitreader.GetBits(payload, pos, 32)
	pos += 32
	toe := bitreader.GetBits(payload, pos, 16)
	pos += 16
	fitFlag := bitreader.GetBits(payload, pos, 1)
	pos++
	aodo := bitreader.GetBits(payload, pos, 5)
	pos += 5
	health := bitreader.GetBits(payload, pos, 6)
	pos += 6
	tgd := bitreader.GetSigned(payload, pos, 8)
	pos += 8
	txTime := bitreader.GetBits(payload, pos, 16)

	outsink.Printf(sink, "RTCM 1019 (GPS Ephemeris):\n")
	outsink.Printf(sink, "  PRN: %d\n", prn)
	outsink.Printf(sink, "  GPS Week: %d\n", gpsWeek)
	outsink.Printf(sink, "  SV Accuracy: %d, Code on L2: %d\n", svAccuracy, codeOnL2)
	outsink.Printf(sink, "  IDOT: %g rad/s\n", float64(idot)*math.Pow(2, -43)*math.Pi)
	outsink.Printf(sink, "  IODE: %d, IODC: %d\n", iode, iodc)
	outsink.Printf(sink, "  toc: %.0f s\n", float64(toc)*math.Pow(2, 4))
	outsink.Printf(sink, "  af2: %.12g s/s^2, af1: %.12g s/s, af0: %.12g s\n",
		float64(af2)*math.Pow(2, -55), float64(af1)*math.Pow(2, -43), float64(af0)*math.Pow(2, -31))
	outsink.Printf(sink, "  crs: %.3f m, delta n: %.12g rad/s, M0: %.12g rad\n",
		float64(crs)*math.Pow(2, -5), float64(deltaN)*math.Pow(2, -43)*math.Pi, float64(m0)*math.Pow(2, -31)*math.Pi)
	outsink.Printf(sink, "  cuc: %.12g rad, cus: %.12g rad\n", float64(cuc)*math.Pow(2, -29), float64(cus)*math.Pow(2, -29))
	outsink.Printf(sink, "  crc: %.3f m, crs2: %.3f m\n", float64(crc)*math.Pow(2, -5), float64(crs2)*math.Pow(2, -5))
	outsink.Printf(sink, "  cic: %.12g rad, cis: %.12g rad\n", float64(cic)*math.Pow(2, -29), float64(cis)*math.Pow(2, -29))
	outsink.Printf(sink, "  eccentricity: %.15g\n", float64(e)*math.Pow(2, -33))
	outsink.Printf(sink, "  sqrtA: %.8f m^0.5\n", float64(sqrtA)*math.Pow(2, -19))
	outsink.Printf(sink, "  toe: %.0f s\n", float64(toe)*math.Pow(2, 4))
	outsink.Printf(sink, "  fit interval flag: %d, AODO: %d, health: %d\n", fitFlag, aodo, health)
	outsink.Printf(sink, "  TGD: %.12g s\n", float64(tgd)*math.Pow(2, -31))
	outsink.Printf(sink, "  transmission time: %.0f s\n", float64(txTime)*math.Pow(2, 4))
	return nil
}
