package ntrip

import (
	"strings"
	"sync/atomic"
)

// StreamFormat identifies a mountpoint's wire format, as advertised by its
// sourcetable format/format-details columns (§6). Only FormatRTCM3x is ever
// framed and decoded; every other recognized format is identified for
// byte-accounting purposes only — original_source/'s gui_detail.c /
// ntrip_handler.c keep a running byte total per detected format even for
// streams it never parses, which this package carries into
// Session.BytesByFormat.
type StreamFormat string

// The formats §6 names. FormatUnknown covers any mountpoint whose
// format/format-details columns (or leading stream bytes) match none of the
// four non-RTCM formats below; per DESIGN.md's Open Question #4 decision, an
// unknown stream is never framed as RTCM — only RTCM3x is.
const (
	FormatRTCM3x StreamFormat = "RTCM 3.x"
	FormatUBX    StreamFormat = "UBX"
	FormatSBF    StreamFormat = "Septentrio SBF"
	FormatRT27   StreamFormat = "Trimble RT27"
	FormatLB2    StreamFormat = "Leica LB2"
	FormatUnknown StreamFormat = "unknown"
)

// knownFormats enumerates every bucket Session.BytesByFormat reports,
// regardless of whether any bytes were ever attributed to it.
var knownFormats = [...]StreamFormat{
	FormatRTCM3x, FormatUBX, FormatSBF, FormatRT27, FormatLB2, FormatUnknown,
}

// DetectFormatFromSourcetable classifies a mountpoint's advertised format
// from its STR; record's format and format-details columns, matching
// case-insensitively per §6. It is advisory: a caster is free to advertise
// something this function doesn't recognize, in which case FormatUnknown is
// returned and the stream is only byte-counted, never framed.
func DetectFormatFromSourcetable(format, formatDetails string) StreamFormat {
	combined := strings.ToLower(format + " " + formatDetails)
	switch {
	case strings.Contains(combined, "rtcm 3") || strings.Contains(combined, "rtcm3"):
		return FormatRTCM3x
	case strings.Contains(combined, "ubx"):
		return FormatUBX
	case strings.Contains(combined, "sbf"):
		return FormatSBF
	case strings.Contains(combined, "rt27"):
		return FormatRT27
	case strings.Contains(combined, "lb2") || strings.Contains(combined, "leica"):
		return FormatLB2
	default:
		return FormatUnknown
	}
}

// SniffFormat supplements sourcetable-advisory detection with the two
// byte-level sync patterns §6 calls out: a UBX frame starts 0xB5 0x62, a
// Septentrio SBF block starts the two ASCII bytes "$@". It never returns
// FormatRTCM3x — 0xD3 preamble detection is internal/rtcmframe's job, not
// this advisory path's — and returns FormatUnknown when fewer than two bytes
// are available or neither pattern matches.
func SniffFormat(b []byte) StreamFormat {
	if len(b) < 2 {
		return FormatUnknown
	}
	switch {
	case b[0] == 0xB5 && b[1] == 0x62:
		return FormatUBX
	case b[0] == '$' && b[1] == '@':
		return FormatSBF
	default:
		return FormatUnknown
	}
}

// formatCounters tracks total bytes received per StreamFormat bucket, plus
// the grand total (BytesReceived), all via atomic add/load so the UI-exposed
// counters in §5's "shared-resource policy" can be read from any goroutine
// while only the session goroutine ever adds to them.
type formatCounters struct {
	total int64
	byFmt map[StreamFormat]*int64
}

func newFormatCounters() *formatCounters {
	fc := &formatCounters{byFmt: make(map[StreamFormat]*int64, len(knownFormats))}
	for _, f := range knownFormats {
		var n int64
		fc.byFmt[f] = &n
	}
	return fc
}

func (fc *formatCounters) add(format StreamFormat, n int) {
	counter, ok := fc.byFmt[format]
	if !ok {
		counter = fc.byFmt[FormatUnknown]
	}
	atomic.AddInt64(counter, int64(n))
	atomic.AddInt64(&fc.total, int64(n))
}

// snapshot returns the current byte count for every known format.
func (fc *formatCounters) snapshot() map[StreamFormat]uint64 {
	out := make(map[StreamFormat]uint64, len(fc.byFmt))
	for f, counter := range fc.byFmt {
		out[f] = uint64(atomic.LoadInt64(counter))
	}
	return out
}
