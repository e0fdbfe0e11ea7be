// Package rtcmstats aggregates per-message-type arrival statistics and
// per-constellation satellite-seen sets across a session, following the
// mutex-guarded aggregate pattern of the teacher's internal/rtk.Processor.
package rtcmstats

import (
	"math/bits"
	"sync"

	"github.com/gnsslabs/ntrip-rtcm/internal/bitreader"
)

// MaxMessageType bounds the fixed stats array; the 12-bit RTCM message
// type field can never reach or exceed it.
const MaxMessageType = 4096

// Constellation identifiers, matching the MSM message-type ranges.
const (
	GPS = iota + 1
	GLONASS
	Galileo
	QZSS
	BeiDou
	SBAS
)

// MsgStat holds per-type observation statistics.
type MsgStat struct {
	Count    int
	MinDT    float64
	MaxDT    float64
	SumDT    float64
	LastSeen float64
	Seen     bool
}

// GnssSatStats tracks which PRNs (1..64) have been observed for one
// constellation.
type GnssSatStats struct {
	ConstellationID int
	prnMask         uint64
}

// Observe marks prn (1..64) as seen.
func (g *GnssSatStats) Observe(prn int) {
	if prn < 1 || prn > 64 {
		return
	}
	g.prnMask |= uint64(1) << uint(prn-1)
}

// DistinctCount returns how many distinct PRNs have been observed.
func (g *GnssSatStats) DistinctCount() int {
	return bits.OnesCount64(g.prnMask)
}

// SatStatsSummary is the set of GnssSatStats keyed by constellation id,
// growing as new constellations appear in the stream.
type SatStatsSummary map[int]*GnssSatStats

// Aggregator accumulates MsgStat and SatStatsSummary for one session. All
// mutation happens on the session's single thread; the mutex exists only
// to let snapshot() be called safely from another goroutine (e.g. a UI
// refresh timer) without synchronizing with the session loop.
type Aggregator struct {
	mu    sync.Mutex
	stats [MaxMessageType]MsgStat
	sats  SatStatsSummary
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{sats: make(SatStatsSummary)}
}

// Record increments stat[type].count and, when a prior observation
// exists, folds the inter-arrival delta into min/max/sum before updating
// last_seen. nowSeconds should come from a monotonic clock.
func (a *Aggregator) Record(msgType uint16, nowSeconds float64) {
	if int(msgType) >= MaxMessageType {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &a.stats[msgType]
	if s.Seen {
		dt := nowSeconds - s.LastSeen
		if s.MinDT == 0 || dt < s.MinDT {
			s.MinDT = dt
		}
		if dt > s.MaxDT {
			s.MaxDT = dt
		}
		s.SumDT += dt
	}
	s.Count++
	s.LastSeen = nowSeconds
	s.Seen = true
}

// constellationFromMSMType maps an MSM message type to its constellation
// id, per the RTCM numbering blocks: 1070s GPS, 1080s GLONASS, 1090s
// Galileo, 1110s QZSS, 1120s BeiDou, 1130s SBAS.
func constellationFromMSMType(msmType uint16) (int, bool) {
	switch {
	case msmType >= 1070 && msmType <= 1079:
		return GPS, true
	case msmType >= 1080 && msmType <= 1089:
		return GLONASS, true
	case msmType >= 1090 && msmType <= 1099:
		return Galileo, true
	case msmType >= 1110 && msmType <= 1119:
		return QZSS, true
	case msmType >= 1120 && msmType <= 1129:
		return BeiDou, true
	case msmType >= 1130 && msmType <= 1139:
		return SBAS, true
	default:
		return 0, false
	}
}

// satMaskBitOffset is the bit offset of the 64-bit satellite mask relative
// to the start of an MSM payload: 12 (msg type) + 12 (station id) + 30
// (epoch ms) + 1 (multi-message) + 3 (IODS) + 7 (reserved) + 2 (clock
// steering) + 2 (external clock) + 1 (divergence-free) + 3 (smoothing
// interval) = 73. Measured from byte 0 of the payload (which still contains
// the message type) the mask begins at bit 73, i.e. 61 bits after the end
// of the 12-bit message type.
const satMaskBitOffset = 73

// RecordSatellites inspects an MSM payload's satellite mask and marks
// every flagged PRN as seen in the appropriate GnssSatStats, creating one
// if this is the constellation's first appearance in the summary.
func (a *Aggregator) RecordSatellites(msmPayload []byte, msmType uint16) {
	constellation, ok := constellationFromMSMType(msmType)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	g, ok := a.sats[constellation]
	if !ok {
		g = &GnssSatStats{ConstellationID: constellation}
		a.sats[constellation] = g
	}

	mask := bitreader.GetBits(msmPayload, satMaskBitOffset, 64)
	for prn := 1; prn <= 64; prn++ {
		bitPos := uint(64 - prn)
		if mask&(uint64(1)<<bitPos) != 0 {
			g.Observe(prn)
		}
	}
}

// Snapshot returns a read-only copy of the current per-type stats and
// per-constellation satellite summary, safe to render concurrently with
// further Record/RecordSatellites calls.
func (a *Aggregator) Snapshot() ([MaxMessageType]MsgStat, SatStatsSummary) {
	a.mu.Lock()
	defer a.mu.Unlock()

	statsCopy := a.stats

	satsCopy := make(SatStatsSummary, len(a.sats))
	for id, g := range a.sats {
		copied := *g
		satsCopy[id] = &copied
	}

	return statsCopy, satsCopy
}
