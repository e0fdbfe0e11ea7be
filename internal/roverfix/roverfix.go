// Package roverfix republishes a rover's live GGA fix, read off a serial GNSS
// receiver, as the position an NTRIP session uploads once per second (§4.8).
//
// This generalizes the teacher's internal/device (serial GNSSDevice, opened
// via go.bug.st/serial) and internal/position.ExtractFromGGA: instead of
// extracting a position to average or display, the extracted fix is held as
// the single most-recent value and handed to ntrip.RoverPosition.PositionFunc
// on demand.
package roverfix

import (
	"bufio"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// Config describes the serial GNSS receiver to read GGA fixes from.
type Config struct {
	PortName string
	BaudRate int // 0 selects DefaultBaudRate

	// MinFixQuality discards GGA sentences below this NMEA fix-quality value
	// (0 = no fix). 0 accepts any fix including an invalid one, matching the
	// teacher's default of reporting whatever the receiver last sent.
	MinFixQuality int

	Logger logrus.FieldLogger
}

// DefaultBaudRate matches the teacher's DefaultSerialConfig for the TOPGNSS
// TOP708 receiver this package was grounded on.
const DefaultBaudRate = 38400

// fix is the latest GGA-derived position, guarded by Feed.mu.
type fix struct {
	latitude   float64
	longitude  float64
	fixQuality int
	updatedAt  time.Time
	valid      bool
}

// Feed owns one open serial port and continuously republishes the most
// recent GGA fix it has read. It is safe for concurrent use: Run is called
// from one goroutine, Position (and the PositionFunc it backs) from any.
type Feed struct {
	port serial.Port
	cfg  Config
	log  logrus.FieldLogger

	mu   sync.RWMutex
	last fix
}

// Open opens the named serial port and returns a Feed ready for Run.
func Open(cfg Config) (*Feed, error) {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("roverfix: opening %s: %w", cfg.PortName, err)
	}
	if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("roverfix: setting read timeout on %s: %w", cfg.PortName, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Feed{
		port: port,
		cfg:  cfg,
		log:  logger.WithField("port", cfg.PortName),
	}, nil
}

// Close releases the underlying serial port.
func (f *Feed) Close() error {
	return f.port.Close()
}

// Run reads the port's NMEA stream line by line until ctx is cancelled or
// the port returns a non-timeout error. Every recognized GGA sentence meeting
// MinFixQuality updates the fix Position reports.
func (f *Feed) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(f.port)
	lines := make(chan string, 1)
	scanErr := make(chan error, 1)

	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			f.handleLine(line)
		case err := <-scanErr:
			return err
		}
	}
}

func (f *Feed) handleLine(line string) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return
	}
	gga, ok := sentence.(nmea.GGA)
	if !ok {
		return
	}
	quality := fixQualityToInt(gga.FixQuality)
	if quality < f.cfg.MinFixQuality {
		f.log.WithField("fix_quality", quality).Debug("dropping GGA below MinFixQuality")
		return
	}

	f.mu.Lock()
	f.last = fix{
		latitude:   gga.Latitude,
		longitude:  gga.Longitude,
		fixQuality: quality,
		updatedAt:  time.Now(),
		valid:      true,
	}
	f.mu.Unlock()
}

// Position returns the most recent GGA-derived fix and whether one has been
// received yet.
func (f *Feed) Position() (lat, lon float64, ok bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last.latitude, f.last.longitude, f.last.valid
}

// PositionFunc adapts Position to the func() (lat, lon float64) shape
// ntrip.RoverPosition.PositionFunc expects. Before the first fix arrives it
// reports (0, 0); callers uploading a GGA sentence before acquiring any fix
// is accepted by casters as a coarse "unknown position" hint per §6.
func (f *Feed) PositionFunc() func() (float64, float64) {
	return func() (float64, float64) {
		lat, lon, _ := f.Position()
		return lat, lon
	}
}

// fixQualityToInt maps go-nmea's enumerated GGA fix-quality string back to
// the integer NMEA wire value, matching the teacher's Position.FixQuality.
func fixQualityToInt(quality string) int {
	switch quality {
	case nmea.Invalid:
		return 0
	case nmea.GPS:
		return 1
	case nmea.DGPS:
		return 2
	case nmea.PPS:
		return 3
	case nmea.RTK:
		return 4
	case nmea.FloatRTK:
		return 5
	case nmea.Estimated:
		return 6
	case nmea.ManualInput:
		return 7
	case nmea.Simulator:
		return 8
	default:
		return -1
	}
}
