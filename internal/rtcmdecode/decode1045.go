package rtcmdecode

import (
	"math"

	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

// decode1045 handles Galileo F/NAV broadcast ephemeris: analogous to 1019
// with Galileo-specific fields (SISA, IODnav, dual BGD terms). Orbit fields
// shared with 1019 (idot, delta n, M0, e, sqrtA, the argument-of-latitude
// corrections, i0/omega/omega0/omegaDot) carry the same RTCM power-of-two
// scales; toe and the BGD terms follow FengXuebin-gnssgo's decode_type1045
// (toe in 60s units, BGD at 2^-32).
func decode1045(payload []byte, sink outsink.Sink) error {
	// 12+6+12+10+8+14+16+32+32+32+32+32+32+24+16+16+16+16+16+16+14+10+10+6 = 430 bits (54 bytes)
	const minBits = 430
	if len(payload)*8 < minBits {
		return ErrPayloadTooShort
	}

	pos := 12
	svid := bitreader.GetBits(payload, pos, 6)
	pos += 6
	week := bitreader.GetBits(payload, pos, 12)
	pos += 12
	iodnav := bitreader.GetBits(payload, pos, 10)
	pos += 10
	sisa := bitreader.GetBits(payload, pos, 8)
	pos += 8
	idot := bitreader.GetSigned(payload, pos, 14)
	pos += 14
	deltaN := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	m0 := bitreader.GetSigned(payload, pos, 32)
	pos += 32
	e := bitreader.GetBits(payload, pos, 32)
	pos += 32
	sqrtA := bitreader.GetBits(payload, pos, 32)
	pos += 32
	omega0 := bitreader.GetSigned(payload, pos, 32)
	pos += 32
	i0 := bitreader.GetSigned(payload, pos, 32)
	pos += 32
	omega := bitreader.GetSigned(payload, pos, 32)
	pos += 32
	omegaDot := bitreader.GetSigned(payload, pos, 24)
	pos += 24
	cuc := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	cus := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	crc := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	crs := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	cic := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	cis := bitreader.GetSigned(payload, pos, 16)
	pos += 16
	toe := bitreader.GetBits(payload, pos, 14)
	pos += 14
	bgdE5aE1 := bitreader.GetSigned(payload, pos, 10)
	pos += 10
	bgdE5bE1 := bitreader.GetSigned(payload, pos, 10)
	pos += 10
	health := bitreader.GetBits(payload, pos, 6)

	outsink.Printf(sink, "RTCM 1045 (Galileo F/NAV Ephemeris):\n")
	outsink.Printf(sink, "  Satellite ID: %d\n", svid)
	outsink.Printf(sink, "  Week Number: %d\n", week)
	outsink.Printf(sink, "  IODnav: %d, SISA: %d\n", iodnav, sisa)
	outsink.Printf(sink, "  IDOT: %g rad/s, Delta n: %.12g rad/s, M0: %.12g rad\n",
		float64(idot)*math.Pow(2, -43)*math.Pi, float64(deltaN)*math.Pow(2, -43)*math.Pi, float64(m0)*math.Pow(2, -31)*math.Pi)
	outsink.Printf(sink, "  Eccentricity: %.15g, sqrtA: %.8f m^0.5\n", float64(e)*math.Pow(2, -33), float64(sqrtA)*math.Pow(2, -19))
	outsink.Printf(sink, "  Omega0: %.12g rad, i0: %.12g rad, omega: %.12g rad, OmegaDot: %.12g rad/s\n",
		float64(omega0)*math.Pow(2, -31)*math.Pi, float64(i0)*math.Pow(2, -31)*math.Pi,
		float64(omega)*math.Pow(2, -31)*math.Pi, float64(omegaDot)*math.Pow(2, -43)*math.Pi)
	outsink.Printf(sink, "  Cuc: %.12g rad, Cus: %.12g rad, Crc: %.3f m, Crs: %.3f m, Cic: %.12g rad, Cis: %.12g rad\n",
		float64(cuc)*math.Pow(2, -29), float64(cus)*math.Pow(2, -29),
		float64(crc)*math.Pow(2, -5), float64(crs)*math.Pow(2, -5),
		float64(cic)*math.Pow(2, -29), float64(cis)*math.Pow(2, -29))
	outsink.Printf(sink, "  Toe: %.0f s\n", float64(toe)*60.0)
	outsink.Printf(sink, "  BGD E5a/E1: %.12g s, BGD E5b/E1: %.12g s\n",
		float64(bgdE5aE1)*math.Pow(2, -32), float64(bgdE5bE1)*math.Pow(2, -32))
	outsink.Printf(sink, "  Health/Status: %d\n", health)
	return nil
}
