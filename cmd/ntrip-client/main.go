// Command ntrip-client connects to one NTRIP caster mountpoint, decodes
// every RTCM 3.x frame it receives, and prints a per-type summary when the
// session ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gnsslabs/ntrip-rtcm/internal/ntrip"
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
	"github.com/gnsslabs/ntrip-rtcm/internal/rtcmdecode"
	"github.com/gnsslabs/ntrip-rtcm/internal/roverfix"
	"github.com/gnsslabs/ntrip-rtcm/internal/rtcmframe"
	"github.com/gnsslabs/ntrip-rtcm/internal/rtcmstats"
)

func main() {
	host := flag.String("host", "localhost", "NTRIP caster host")
	port := flag.Int("port", 2101, "NTRIP caster port")
	mountpoint := flag.String("mountpoint", "", "NTRIP caster mountpoint (required)")
	username := flag.String("username", "", "NTRIP caster username")
	password := flag.String("password", "", "NTRIP caster password")
	dialTimeout := flag.Duration("dial-timeout", 10*time.Second, "TCP dial timeout")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	roverLat := flag.Float64("rover-lat", 0, "Static rover latitude uploaded in GGA (ignored if -rover-port is set)")
	roverLon := flag.Float64("rover-lon", 0, "Static rover longitude uploaded in GGA (ignored if -rover-port is set)")
	roverPort := flag.String("rover-port", "", "Serial port of a live GNSS receiver to source the GGA uplink from")
	roverBaud := flag.Int("rover-baud", roverfix.DefaultBaudRate, "Baud rate for -rover-port")
	detectFormat := flag.Bool("detect-format", true, "query the sourcetable first to detect the mountpoint's stream format (§6); non-RTCM mountpoints are then byte-counted instead of framed")
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *mountpoint == "" {
		logger.Fatal("-mountpoint is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	var rover ntrip.RoverPosition
	var hasRover bool
	var staticLat, staticLon float64

	if *roverPort != "" {
		feed, err := roverfix.Open(roverfix.Config{
			PortName: *roverPort,
			BaudRate: *roverBaud,
			Logger:   logger,
		})
		if err != nil {
			logger.Fatalf("opening rover serial port: %v", err)
		}
		defer feed.Close()
		go func() {
			if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Warn("rover serial feed stopped")
			}
		}()
		rover.PositionFunc = feed.PositionFunc()
		hasRover = true
	} else if *roverLat != 0 || *roverLon != 0 {
		staticLat, staticLon = *roverLat, *roverLon
		rover.PositionFunc = func() (float64, float64) { return staticLat, staticLon }
		hasRover = true
	}

	address := fmt.Sprintf("%s:%d", *host, *port)

	streamFormat := ntrip.FormatRTCM3x
	if *detectFormat {
		streamFormat = detectMountpointFormat(address, *dialTimeout, *host, *mountpoint, logger)
	}

	logger.WithField("address", address).Info("dialing NTRIP caster")
	conn, err := net.DialTimeout("tcp", address, *dialTimeout)
	if err != nil {
		logger.Fatalf("%v: %v", ntrip.ErrConnectFailed, err)
	}
	defer conn.Close()

	session := ntrip.NewSession(conn, ntrip.Config{
		Host:         *host,
		Username:     *username,
		Password:     *password,
		Mountpoint:   *mountpoint,
		Rover:        rover,
		Logger:       logger,
		StreamFormat: streamFormat,
	})

	go func() {
		<-ctx.Done()
		session.Cancel()
	}()

	sink := outsink.NewDirect()
	stats := rtcmstats.New()
	decodeCfg := rtcmdecode.Config{HasRover: hasRover, RoverLat: staticLat, RoverLon: staticLon}

	start := time.Now()
	logger.Info("connected, streaming RTCM frames")
	err = session.Stream(func(frame rtcmframe.Frame) {
		stats.Record(frame.MessageType, time.Since(start).Seconds())
		if frame.MessageType >= 1071 && frame.MessageType <= 1137 {
			stats.RecordSatellites(frame.Payload, frame.MessageType)
		}
		frameCfg := decodeCfg
		if rover.PositionFunc != nil {
			frameCfg.RoverLat, frameCfg.RoverLon = rover.PositionFunc()
		}
		if _, decodeErr := rtcmdecode.Decode(frame, frameCfg, sink); decodeErr != nil {
			logger.WithError(decodeErr).Debug("decode refused or failed")
		}
	})
	if err != nil && err != ntrip.ErrCancelled {
		logger.Fatalf("stream ended: %v", err)
	}
	logger.Info("session ended")
	printSummary(stats)
	printByteCounts(session)
}

// detectMountpointFormat opens a short-lived second connection to fetch the
// sourcetable and classify the requested mountpoint's advertised format
// (§6), so the streaming connection below knows up front whether to frame
// RTCM or just count bytes. Any failure here (unreachable caster, mountpoint
// absent from the table) falls back to FormatRTCM3x, the prior behavior.
func detectMountpointFormat(address string, dialTimeout time.Duration, host, mountpoint string, logger logrus.FieldLogger) ntrip.StreamFormat {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		logger.WithError(err).Warn("sourcetable lookup failed, assuming RTCM 3.x")
		return ntrip.FormatRTCM3x
	}
	defer conn.Close()

	session := ntrip.NewSession(conn, ntrip.Config{Host: host, Logger: logger})
	body, err := session.RequestSourcetable()
	if err != nil {
		logger.WithError(err).Warn("sourcetable lookup failed, assuming RTCM 3.x")
		return ntrip.FormatRTCM3x
	}

	for _, rec := range ntrip.ParseSourcetable(body, false, 0, 0) {
		if rec.Mountpoint == mountpoint {
			format := ntrip.DetectFormatFromSourcetable(rec.Format, rec.FormatDetails)
			logger.WithField("format", format).Info("detected mountpoint stream format")
			return format
		}
	}
	logger.Warn("mountpoint not found in sourcetable, assuming RTCM 3.x")
	return ntrip.FormatRTCM3x
}

func printByteCounts(session *ntrip.Session) {
	fmt.Printf("total bytes received: %d\n", session.BytesReceived())
	for format, n := range session.BytesByFormat() {
		if n == 0 {
			continue
		}
		fmt.Printf("  %s: %d bytes\n", format, n)
	}
}

func printSummary(stats *rtcmstats.Aggregator) {
	typeStats, satStats := stats.Snapshot()
	fmt.Println("\n--- Session summary ---")
	for msgType, s := range typeStats {
		if !s.Seen {
			continue
		}
		fmt.Printf("type %4d: count=%-6d min_dt=%.3fs max_dt=%.3fs\n", msgType, s.Count, s.MinDT, s.MaxDT)
	}
	for constellation, g := range satStats {
		fmt.Printf("constellation %d: %d distinct satellites seen\n", constellation, g.DistinctCount())
	}
}
