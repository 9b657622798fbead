package interval_test

import (
	"testing"
	"time"

	"factoryline-cloud/internal/interval"
)

var base = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func mustWindow(t *testing.T, start, end time.Time) interval.Window {
	t.Helper()
	w, err := interval.NewWindow(start, end)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	return w
}

func TestNewWindow_RejectsInvertedBounds(t *testing.T) {
	if _, err := interval.NewWindow(base.Add(time.Hour), base); err == nil {
		t.Fatalf("expected error for inverted bounds")
	}
	if _, err := interval.NewWindow(base, base); err == nil {
		t.Fatalf("expected error for empty window")
	}
}

func TestClip(t *testing.T) {
	w := mustWindow(t, base, base.Add(time.Hour))

	cases := []struct {
		name       string
		start, end time.Time
		want       time.Duration
	}{
		{"inside", base.Add(10 * time.Minute), base.Add(20 * time.Minute), 10 * time.Minute},
		{"overlap left", base.Add(-10 * time.Minute), base.Add(10 * time.Minute), 10 * time.Minute},
		{"overlap right", base.Add(50 * time.Minute), base.Add(90 * time.Minute), 10 * time.Minute},
		{"covering", base.Add(-time.Hour), base.Add(2 * time.Hour), time.Hour},
		{"before", base.Add(-time.Hour), base, 0},
		{"after", base.Add(time.Hour), base.Add(2 * time.Hour), 0},
	}
	for _, tc := range cases {
		if got := w.Clip(tc.start, tc.end); got != tc.want {
			t.Fatalf("%s: clip = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestSplitBuckets(t *testing.T) {
	w := mustWindow(t, base, base.Add(150*time.Minute))

	buckets := w.SplitBuckets(time.Hour)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if !buckets[2].End.Equal(w.End) {
		t.Fatalf("last bucket must clip to window end, got %s", buckets[2].End)
	}
	if buckets[2].Duration() != 30*time.Minute {
		t.Fatalf("last bucket duration = %s", buckets[2].Duration())
	}
}

func TestSplitBuckets_ZeroSizeYieldsWholeWindow(t *testing.T) {
	w := mustWindow(t, base, base.Add(time.Hour))
	buckets := w.SplitBuckets(0)
	if len(buckets) != 1 || buckets[0] != w {
		t.Fatalf("expected single bucket equal to window, got %+v", buckets)
	}
}

func TestEachDay(t *testing.T) {
	w := mustWindow(t, base.Add(6*time.Hour), base.Add(54*time.Hour))

	var days []time.Time
	w.EachDay(func(day time.Time) { days = append(days, day) })
	if len(days) != 3 {
		t.Fatalf("expected 3 calendar days, got %d", len(days))
	}
	if !days[0].Equal(base) {
		t.Fatalf("first day = %s, want %s", days[0], base)
	}
}
