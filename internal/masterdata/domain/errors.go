package masterdata

import "errors"

// ErrEmptyLineID is returned for a config without a line id.
var ErrEmptyLineID = errors.New("masterdata: empty line id")

// ErrInvalidThreshold is returned for a non-positive downtime threshold.
var ErrInvalidThreshold = errors.New("masterdata: downtime threshold must be positive")

// ErrNegativeRate is returned for a negative performance rate.
var ErrNegativeRate = errors.New("masterdata: negative performance rate")

// ErrInvalidShiftTime is returned for an out-of-range or inverted shift time.
var ErrInvalidShiftTime = errors.New("masterdata: invalid shift time")

// ErrLineNotFound is returned when a line id is unknown to the provider.
var ErrLineNotFound = errors.New("masterdata: line not found")

// ErrGroupNotFound is returned when a group id is unknown to the provider.
var ErrGroupNotFound = errors.New("masterdata: group not found")
