package masterdata_test

import (
	"testing"
	"time"

	"factoryline-cloud/internal/interval"
	masterdata "factoryline-cloud/internal/masterdata/domain"
)

var day = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func window(t *testing.T, start, end time.Time) interval.Window {
	t.Helper()
	w, err := interval.NewWindow(start, end)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	return w
}

func TestScheduledMinutes_SingleShiftFullDay(t *testing.T) {
	schedule := masterdata.ShiftSchedule{
		{Start: masterdata.DayTime{Hour: 8}, End: masterdata.DayTime{Hour: 16}},
	}
	w := window(t, day, day.AddDate(0, 0, 1))

	if got := schedule.ScheduledMinutes(w); got != 480 {
		t.Fatalf("scheduled minutes = %v, want 480", got)
	}
}

func TestScheduledMinutes_WindowClipsShift(t *testing.T) {
	schedule := masterdata.ShiftSchedule{
		{Start: masterdata.DayTime{Hour: 8}, End: masterdata.DayTime{Hour: 16}},
	}
	w := window(t, day.Add(10*time.Hour), day.Add(12*time.Hour))

	if got := schedule.ScheduledMinutes(w); got != 120 {
		t.Fatalf("scheduled minutes = %v, want 120", got)
	}
}

func TestScheduledMinutes_MultipliesAcrossDays(t *testing.T) {
	schedule := masterdata.ShiftSchedule{
		{Start: masterdata.DayTime{Hour: 6}, End: masterdata.DayTime{Hour: 14}},
		{Start: masterdata.DayTime{Hour: 14}, End: masterdata.DayTime{Hour: 22}},
	}
	w := window(t, day, day.AddDate(0, 0, 3))

	if got := schedule.ScheduledMinutes(w); got != 3*2*480 {
		t.Fatalf("scheduled minutes = %v, want %v", got, 3*2*480)
	}
}

func TestScheduledMinutes_OvernightShiftSpansMidnight(t *testing.T) {
	schedule := masterdata.ShiftSchedule{
		{Start: masterdata.DayTime{Hour: 22}, End: masterdata.DayTime{Hour: 6}, Overnight: true},
	}
	w := window(t, day, day.AddDate(0, 0, 1))

	// 00:00-06:00 from the previous day's shift plus 22:00-24:00 of today's.
	if got := schedule.ScheduledMinutes(w); got != 480 {
		t.Fatalf("scheduled minutes = %v, want 480", got)
	}
}

func TestScheduledMinutes_EmptySchedule(t *testing.T) {
	var schedule masterdata.ShiftSchedule
	w := window(t, day, day.AddDate(0, 0, 1))

	if got := schedule.ScheduledMinutes(w); got != 0 {
		t.Fatalf("scheduled minutes = %v, want 0", got)
	}
}

func TestShiftValidate(t *testing.T) {
	bad := masterdata.Shift{Start: masterdata.DayTime{Hour: 16}, End: masterdata.DayTime{Hour: 8}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for inverted day shift")
	}
	overnight := masterdata.Shift{Start: masterdata.DayTime{Hour: 22}, End: masterdata.DayTime{Hour: 6}, Overnight: true}
	if err := overnight.Validate(); err != nil {
		t.Fatalf("overnight shift should validate: %v", err)
	}
}
