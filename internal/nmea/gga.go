// Package nmea builds the GGA sentence an NTRIP client uploads to a caster
// so the caster can serve a network (VRS) correction stream tailored to the
// rover's approximate position.
package nmea

import (
	"fmt"
	"math"
	"time"
)

// BuildGGA renders lat/lon into a $GNGGA sentence sampled at now (interpreted
// in UTC), matching the fixed fields create_gngga_sentence used in the
// original NTRIP-Analyser: fix quality 1, satellites 8, HDOP 1.0, altitude
// 1.5 m, geoid separation 0.0, age-of-differential blank.
func BuildGGA(lat, lon float64, now time.Time) string {
	utc := now.UTC()
	timeField := fmt.Sprintf("%02d%02d%02d.00", utc.Hour(), utc.Minute(), utc.Second())

	latField, latHem := ddToNMEA(lat, 2)
	lonField, lonHem := ddToNMEA(lon, 3)

	body := fmt.Sprintf("GNGGA,%s,%s,%s,%s,%s,1,08,1.0,1.5,M,0.0,M,,",
		timeField, latField, latHem, lonField, lonHem)

	return fmt.Sprintf("$%s*%02X\r\n", body, checksum(body))
}

// ddToNMEA converts a signed decimal-degrees coordinate to NMEA's
// ddmm.mmmm / dddmm.mmmm form plus its hemisphere letter. degWidth is 2 for
// latitude, 3 for longitude.
func ddToNMEA(dd float64, degWidth int) (field, hemisphere string) {
	hemisphere = "N"
	if degWidth == 3 {
		hemisphere = "E"
	}
	if dd < 0 {
		if degWidth == 3 {
			hemisphere = "W"
		} else {
			hemisphere = "S"
		}
		dd = -dd
	}

	deg := math.Trunc(dd)
	min := (dd - deg) * 60.0

	format := fmt.Sprintf("%%0%dd%%07.4f", degWidth)
	return fmt.Sprintf(format, int(deg), min), hemisphere
}

// checksum is the bytewise XOR over s (the sentence body, between the
// '$' and '*' delimiters which are not part of s).
func checksum(s string) byte {
	var c byte
	for i := 0; i < len(s); i++ {
		c ^= s[i]
	}
	return c
}
