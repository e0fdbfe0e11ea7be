// Command ntrip-sourcetable fetches a caster's sourcetable and prints every
// mountpoint it advertises, optionally sorted by distance from a rover
// position.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gnsslabs/ntrip-rtcm/internal/ntrip"
)

func main() {
	host := flag.String("host", "localhost", "NTRIP caster host")
	port := flag.Int("port", 2101, "NTRIP caster port")
	dialTimeout := flag.Duration("dial-timeout", 10*time.Second, "TCP dial timeout")
	roverLat := flag.Float64("rover-lat", 0, "Rover latitude; used with -rover-lon when -with-distance is set")
	roverLon := flag.Float64("rover-lon", 0, "Rover longitude")
	hasRover := flag.Bool("with-distance", false, "Compute distance from -rover-lat/-rover-lon to every mountpoint and sort results by it")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	address := fmt.Sprintf("%s:%d", *host, *port)
	conn, err := net.DialTimeout("tcp", address, *dialTimeout)
	if err != nil {
		logger.Fatalf("%v: %v", ntrip.ErrConnectFailed, err)
	}
	defer conn.Close()

	session := ntrip.NewSession(conn, ntrip.Config{Host: *host, Logger: logger})

	body, err := session.RequestSourcetable()
	if err != nil {
		logger.Fatalf("requesting sourcetable: %v", err)
	}

	records := ntrip.ParseSourcetable(body, *hasRover, *roverLat, *roverLon)
	if *hasRover {
		sort.Slice(records, func(i, j int) bool { return records[i].DistanceKM < records[j].DistanceKM })
	}

	if len(records) == 0 {
		fmt.Println("no STR; mountpoint records found")
		os.Exit(0)
	}

	for _, rec := range records {
		detected := ntrip.DetectFormatFromSourcetable(rec.Format, rec.FormatDetails)
		if rec.HasDistanceKM {
			fmt.Printf("%-12s %-24s %-10s [%s] %6.1f km  (%.5f, %.5f)\n",
				rec.Mountpoint, rec.Identifier, rec.Format, detected, rec.DistanceKM, rec.Latitude, rec.Longitude)
		} else {
			fmt.Printf("%-12s %-24s %-10s [%s] (%.5f, %.5f)\n",
				rec.Mountpoint, rec.Identifier, rec.Format, detected, rec.Latitude, rec.Longitude)
		}
	}
}
