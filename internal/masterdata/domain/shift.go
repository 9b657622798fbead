package masterdata

import (
	"time"

	"factoryline-cloud/internal/interval"
)

// DayTime is a time of day, independent of date.
type DayTime struct {
	Hour   int
	Minute int
}

// Minutes returns minutes past midnight.
func (t DayTime) Minutes() int { return t.Hour*60 + t.Minute }

// At anchors the time of day to a calendar day.
func (t DayTime) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// Shift is one scheduled production period. Overnight shifts end on the
// following calendar day.
type Shift struct {
	Start     DayTime
	End       DayTime
	Overnight bool
}

// Validate checks shift invariants.
func (s Shift) Validate() error {
	for _, t := range []DayTime{s.Start, s.End} {
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
			return ErrInvalidShiftTime
		}
	}
	if !s.Overnight && s.End.Minutes() <= s.Start.Minutes() {
		return ErrInvalidShiftTime
	}
	return nil
}

// ShiftSchedule is the ordered set of shifts for a line.
type ShiftSchedule []Shift

// ScheduledMinutes sums the shift durations intersecting the window. Each
// shift is materialized once per calendar day the window covers; an
// overnight shift spans into the next day before clipping.
func (s ShiftSchedule) ScheduledMinutes(w interval.Window) float64 {
	if len(s) == 0 {
		return 0
	}
	var minutes float64
	// Start one day early so an overnight shift that began on the previous
	// calendar day still contributes its after-midnight part.
	scan := interval.Window{Start: w.Start.AddDate(0, 0, -1), End: w.End}
	scan.EachDay(func(day time.Time) {
		for _, shift := range s {
			start := shift.Start.At(day)
			end := shift.End.At(day)
			if shift.Overnight {
				end = end.AddDate(0, 0, 1)
			}
			minutes += w.Clip(start, end).Minutes()
		}
	})
	return minutes
}
