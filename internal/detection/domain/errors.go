package detection

import "errors"

// ErrInvalidEventID is returned for a non-positive detection id.
var ErrInvalidEventID = errors.New("detection: invalid event id")

// ErrZeroTimestamp is returned for a detection with no timestamp.
var ErrZeroTimestamp = errors.New("detection: zero timestamp")

// ErrInvalidAreaRole is returned for an unknown area role.
var ErrInvalidAreaRole = errors.New("detection: invalid area role")
