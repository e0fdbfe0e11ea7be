package msm

import "errors"

// ErrPayloadTooShort is returned when a payload lacks enough bits for the
// header, satellite data block, or signal data block it claims to carry.
var ErrPayloadTooShort = errors.New("msm: payload too short")
