package interval

import "time"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window and validates its bounds.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, ErrZeroBound
	}
	if !start.Before(end) {
		return Window{}, ErrInvertedWindow
	}
	return Window{Start: start, End: end}, nil
}

// Duration returns the window length.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Minutes returns the window length in minutes.
func (w Window) Minutes() float64 { return w.End.Sub(w.Start).Minutes() }

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether two half-open windows share any instant.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Clip returns the part of [start, end) that falls inside the window,
// or zero if the two do not overlap.
func (w Window) Clip(start, end time.Time) time.Duration {
	if !start.Before(w.End) || !end.After(w.Start) {
		return 0
	}
	if start.Before(w.Start) {
		start = w.Start
	}
	if end.After(w.End) {
		end = w.End
	}
	return end.Sub(start)
}

// SplitBuckets cuts the window into consecutive buckets of the given size.
// The last bucket is clipped to the window end. A non-positive size yields
// the window itself as a single bucket.
func (w Window) SplitBuckets(size time.Duration) []Window {
	if size <= 0 || size >= w.Duration() {
		return []Window{w}
	}
	var buckets []Window
	for start := w.Start; start.Before(w.End); start = start.Add(size) {
		end := start.Add(size)
		if end.After(w.End) {
			end = w.End
		}
		buckets = append(buckets, Window{Start: start, End: end})
	}
	return buckets
}

// EachDay calls fn once per calendar day the window touches, passing the
// midnight that starts the day in the window's location.
func (w Window) EachDay(fn func(dayStart time.Time)) {
	day := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	for day.Before(w.End) {
		fn(day)
		day = day.AddDate(0, 0, 1)
	}
}
