package rtcmdecode

import (
	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
)

// mjdToCalendar converts a Modified Julian Day number to a Gregorian
// calendar date, using the standard integer algorithm (MJD epoch:
// 1858-11-17, Julian day 2400000.5).
func mjdToCalendar(mjd uint64) (year, month, day int) {
	jd := int64(mjd) + 2400001
	l := jd + 68569
	n := 4 * l / 146097
	l = l - (146097*n+3)/4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	day = int(l - 2447*int64(j)/80)
	l = int64(j) / 11
	month = int(int64(j) + 2 - 12*l)
	year = int(100*(n-49) + i + l)
	return
}

// decode1013 handles system parameters: MJD/seconds-of-day header plus a
// table of announced message types.
func decode1013(payload []byte, sink outsink.Sink) error {
	const headerBits = 12 + 12 + 16 + 17 + 5
	if len(payload)*8 < headerBits {
		return ErrPayloadTooShort
	}

	pos := 12
	stationID := bitreader.GetBits(payload, pos, 12)
	pos += 12
	mjd := bitreader.GetBits(payload, pos, 16)
	pos += 16
	secondsOfDay := bitreader.GetBits(payload, pos, 17)
	pos += 17
	numAnnouncements := bitreader.GetBits(payload, pos, 5)
	pos += 5

	year, month, day := mjdToCalendar(mjd)
	hours := secondsOfDay / 3600
	minutes := (secondsOfDay % 3600) / 60
	secs := secondsOfDay % 60

	outsink.Printf(sink, "RTCM 1013 (System Parameters):\n")
	outsink.Printf(sink, "  Reference Station ID: %d\n", stationID)
	outsink.Printf(sink, "  Modified Julian Day: %d (%04d-%02d-%02d)\n", mjd, year, month, day)
	outsink.Printf(sink, "  Seconds of Day: %d (%02d:%02d:%02d UTC)\n", secondsOfDay, hours, minutes, secs)
	outsink.Printf(sink, "  Message Announcements: %d\n", numAnnouncements)

	const perAnnouncementBits = 12 + 1 + 16
	for i := uint64(0); i < numAnnouncements; i++ {
		if pos+perAnnouncementBits > len(payload)*8 {
			outsink.Printf(sink, "  [WARNING] payload too short for announcement %d\n", i+1)
			break
		}
		announcedType := bitreader.GetBits(payload, pos, 12)
		pos += 12
		sync := bitreader.GetBits(payload, pos, 1)
		pos++
		intervalRaw := bitreader.GetBits(payload, pos, 16)
		pos += 16

		outsink.Printf(sink, "    type=%d sync=%d interval=%.1fs\n", announcedType, sync, float64(intervalRaw)*0.1)
	}
	return nil
}
