package ntrip

import (
	"strconv"
	"strings"

	"github.com/gnsslabs/ntrip-rtcm/internal/geodesy"
)

// MountpointRecord is one STR; line from a caster's sourcetable, per §4.9.
type MountpointRecord struct {
	Mountpoint    string
	Identifier    string
	Format        string
	FormatDetails string
	Carrier       string
	NavSystems    string
	Network       string
	Country       string
	Latitude      float64
	Longitude     float64

	// DistanceKM is only populated when ParseSourcetable is given a rover
	// position; it is the great-circle distance (§4.3) to this mountpoint.
	DistanceKM    float64
	HasDistanceKM bool
}

// ParseSourcetable reads a caster's raw sourcetable response body and
// returns every STR; record it contains. Non-STR lines (CAS, NET, the
// SOURCETABLE status line, ENDSOURCETABLE) are discarded, matching §4.9's
// stated scope — a GUI wanting CAS/NET records renders them separately.
//
// If hasRover is true, each record's distance from (roverLat, roverLon) is
// computed and attached.
func ParseSourcetable(body string, hasRover bool, roverLat, roverLon float64) []MountpointRecord {
	var records []MountpointRecord

	for _, line := range splitLines(body) {
		if !strings.HasPrefix(line, "STR;") {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) < 11 {
			continue
		}

		lat, _ := strconv.ParseFloat(fields[9], 64)
		lon, _ := strconv.ParseFloat(fields[10], 64)

		rec := MountpointRecord{
			Mountpoint:    fields[1],
			Identifier:    fields[2],
			Format:        fields[3],
			FormatDetails: fields[4],
			Carrier:       fields[5],
			NavSystems:    fields[6],
			Network:       fields[7],
			Country:       fields[8],
			Latitude:      lat,
			Longitude:     lon,
		}

		if hasRover {
			rec.DistanceKM, _ = geodesy.GreatCircle(roverLat, roverLon, rec.Latitude, rec.Longitude)
			rec.HasDistanceKM = true
		}

		records = append(records, rec)
	}

	return records
}

func splitLines(body string) []string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	return strings.Split(normalized, "\n")
}
