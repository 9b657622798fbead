package interval

import "errors"

// ErrZeroBound is returned when a window bound is the zero time.
var ErrZeroBound = errors.New("interval: zero window bound")

// ErrInvertedWindow is returned when start is not before end.
var ErrInvertedWindow = errors.New("interval: start must be before end")
