package ntrip

import "errors"

// Sentinel error kinds a Session surfaces to its caller, per §7's error
// taxonomy. FramingError and CrcMismatch are not included here: the former
// is recovered locally by internal/rtcmframe, the latter is surfaced as a
// flag on the frame and handled by internal/rtcmdecode, not at the session
// level.
var (
	ErrConnectFailed  = errors.New("ntrip: connect failed")
	ErrAuthRejected   = errors.New("ntrip: caster rejected request")
	ErrProtocolDesync = errors.New("ntrip: response header delimiter not found")
	ErrSendFailed     = errors.New("ntrip: outbound write failed")
	ErrCancelled      = errors.New("ntrip: session cancelled")
)
