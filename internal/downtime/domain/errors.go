package downtime

import "errors"

// ErrInvalidInterval is returned when start is not before end.
var ErrInvalidInterval = errors.New("downtime: interval start must be before end")

// ErrZeroTimestamp is returned when an interval bound is the zero time.
var ErrZeroTimestamp = errors.New("downtime: zero interval bound")

// ErrInvalidSource is returned for an unknown interval source.
var ErrInvalidSource = errors.New("downtime: invalid interval source")

// ErrCheckpointConflict is returned when the checkpoint moved between read
// and write. Callers treat it as a benign skip, not a failure.
var ErrCheckpointConflict = errors.New("downtime: checkpoint changed since read")

// ErrNotDBSourced is returned when a reason update targets a calculated interval.
var ErrNotDBSourced = errors.New("downtime: reason updates apply to db-sourced intervals only")

// ErrEventNotFound is returned when an interval id is unknown to the store.
var ErrEventNotFound = errors.New("downtime: event not found")
