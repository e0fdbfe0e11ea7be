package rtcmdecode

import (
	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/geodesy"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

const ecefScale = 0.0001
const antennaHeightScale = 0.0001

func decode1005(payload []byte, cfg Config, sink outsink.Sink) error {
	// 12 (type) + 12 + 6 + 4 + 38 + 1 + 1 + 38 + 2 + 38 = 152 bits = 19 bytes.
	if len(payload) < 19 {
		return ErrPayloadTooShort
	}

	pos := 12 // skip message type
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12
	itrfYear := bitreader.GetBits(payload, pos, 6)
	pos += 6
	gpsInd := bitreader.GetBits(payload, pos, 1)
	pos++
	gloInd := bitreader.GetBits(payload, pos, 1)
	pos++
	galInd := bitreader.GetBits(payload, pos, 1)
	pos++
	refStationInd := bitreader.GetBits(payload, pos, 1)
	pos++

	x := bitreader.GetSigned(payload, pos, 38)
	pos += 38
	oscInd := bitreader.GetBits(payload, pos, 1)
	pos += 1 + 1 // oscillator indicator bit + reserved bit
	y := bitreader.GetSigned(payload, pos, 38)
	pos += 38 + 2
	z := bitreader.GetSigned(payload, pos, 38)

	outsink.Printf(sink, "RTCM 1005:\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  ITRF Realization Year: %d\n", itrfYear)
	outsink.Printf(sink, "  GPS: %d, GLONASS: %d, Galileo: %d\n", gpsInd, gloInd, galInd)
	outsink.Printf(sink, "  Reference Station Indicator: %d\n", refStationInd)
	outsink.Printf(sink, "  Single Receiver Oscillator Indicator: %d\n", oscInd)

	renderBasePosition(sink, float64(x)*ecefScale, float64(y)*ecefScale, float64(z)*ecefScale, 0, cfg)
	return nil
}

func decode1006(payload []byte, cfg Config, sink outsink.Sink) error {
	// 152 bits (as 1005) + 2 reserved + 16-bit antenna height = 170 bits
	// = 22 bytes (rounded up).
	if len(payload) < 22 {
		return ErrPayloadTooShort
	}

	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12
	itrfYear := bitreader.GetBits(payload, pos, 6)
	pos += 6
	gpsInd := bitreader.GetBits(payload, pos, 1)
	pos++
	gloInd := bitreader.GetBits(payload, pos, 1)
	pos++
	galInd := bitreader.GetBits(payload, pos, 1)
	pos++
	refStationInd := bitreader.GetBits(payload, pos, 1)
	pos++

	x := bitreader.GetSigned(payload, pos, 38)
	pos += 38
	oscInd := bitreader.GetBits(payload, pos, 1)
	pos += 1 + 1
	y := bitreader.GetSigned(payload, pos, 38)
	pos += 38 + 2
	z := bitreader.GetSigned(payload, pos, 38)
	pos += 38 + 2
	antennaHeight := bitreader.GetBits(payload, pos, 16)

	outsink.Printf(sink, "RTCM 1006:\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  ITRF Realization Year: %d\n", itrfYear)
	outsink.Printf(sink, "  GPS: %d, GLONASS: %d, Galileo: %d\n", gpsInd, gloInd, galInd)
	outsink.Printf(sink, "  Reference Station Indicator: %d\n", refStationInd)
	outsink.Printf(sink, "  Single Receiver Oscillator Indicator: %d\n", oscInd)
	outsink.Printf(sink, "  Antenna Height: %.4f m\n", float64(antennaHeight)*antennaHeightScale)

	renderBasePosition(sink, float64(x)*ecefScale, float64(y)*ecefScale, float64(z)*ecefScale,
		float64(antennaHeight)*antennaHeightScale, cfg)
	return nil
}

func renderBasePosition(sink outsink.Sink, x, y, z, antennaHeight float64, cfg Config) {
	outsink.Printf(sink, "  ECEF X: %.4f m\n", x)
	outsink.Printf(sink, "  ECEF Y: %.4f m\n", y)
	outsink.Printf(sink, "  ECEF Z: %.4f m\n", z)

	lat, lon, alt := geodesy.ECEFToGeodetic(x, y, z, antennaHeight)
	outsink.Printf(sink, "  WGS84 Lat: %.8f deg, Lon: %.8f deg, Alt: %.3f m\n", lat, lon, alt)
	outsink.Printf(sink, "  [Google Maps Link] https://maps.google.com/?q=%.8f,%.8f\n", lat, lon)

	if cfg.HasRover {
		distanceKM, bearingDeg := geodesy.GreatCircle(cfg.RoverLat, cfg.RoverLon, lat, lon)
		outsink.Printf(sink, "  Distance to base (from rover): %.3f km, Heading: %.1f deg\n", distanceKM, bearingDeg)
	}
}
