package application_test

import (
	"context"
	"io"
	"log"
	"math"
	"testing"
	"time"

	detection "factoryline-cloud/internal/detection/domain"
	detectionmemory "factoryline-cloud/internal/detection/infrastructure/memory"
	downtimememory "factoryline-cloud/internal/downtime/infrastructure/memory"
	"factoryline-cloud/internal/interval"
	masterdata "factoryline-cloud/internal/masterdata/domain"
	masterdatamemory "factoryline-cloud/internal/masterdata/infrastructure/memory"
	"factoryline-cloud/internal/oee/application"
)

var t0 = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

type fixture struct {
	feed     *detectionmemory.DetectionFeed
	store    *downtimememory.DowntimeStore
	provider *masterdatamemory.LineProvider
	agg      *application.Aggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	feed := detectionmemory.NewDetectionFeed()
	store := downtimememory.NewDowntimeStore()
	provider := masterdatamemory.NewLineProvider()
	agg, err := application.NewAggregator(feed, store, provider, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	return &fixture{feed: feed, store: store, provider: provider, agg: agg}
}

// allDay schedules a line around the clock so scheduled minutes equal the
// window length.
func allDay() masterdata.ShiftSchedule {
	return masterdata.ShiftSchedule{
		{Start: masterdata.DayTime{Hour: 0}, End: masterdata.DayTime{Hour: 12}},
		{Start: masterdata.DayTime{Hour: 12}, End: masterdata.DayTime{Hour: 23, Minute: 59}},
	}
}

func (f *fixture) addCount(lineID string, role detection.AreaRole, start time.Time, count int, nextID *int64) {
	for i := 0; i < count; i++ {
		*nextID++
		f.feed.Add(lineID, detection.DetectionEvent{
			ID:        *nextID,
			Timestamp: start.Add(time.Duration(i) * time.Second),
			AreaID:    "area-" + string(role),
			Role:      role,
		})
	}
}

func window(t *testing.T, start, end time.Time) interval.Window {
	t.Helper()
	w, err := interval.NewWindow(start, end)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	return w
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeLine_SingleBucket(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-a",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   100,
	}, masterdata.ShiftSchedule{
		{Start: masterdata.DayTime{Hour: 8}, End: masterdata.DayTime{Hour: 16}},
	})
	// 24 minutes of recorded downtime inside the shift.
	f.store.SeedManual("line-a", t0.Add(9*time.Hour), t0.Add(9*time.Hour+24*time.Minute), "RC-02", "jam")

	var nextID int64
	f.addCount("line-a", detection.RoleOutput, t0.Add(10*time.Hour), 684, &nextID)

	w := window(t, t0, t0.AddDate(0, 0, 1))
	results, err := f.agg.ComputeLine(context.Background(), "line-a", w, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(results))
	}
	r := results[0]
	if r.Partial {
		t.Fatalf("unexpected partial result: %+v", r)
	}
	if r.Result.ScheduledMinutes != 480 {
		t.Fatalf("scheduled = %v, want 480", r.Result.ScheduledMinutes)
	}
	if r.Result.DowntimeMinutes != 24 {
		t.Fatalf("downtime = %v, want 24", r.Result.DowntimeMinutes)
	}
	if !almostEqual(r.Result.Availability, 95) {
		t.Fatalf("availability = %v, want 95", r.Result.Availability)
	}
	// Operating 456 minutes at 100/h expects 760; 684 real => 90%.
	if !almostEqual(r.Result.Performance, 90) {
		t.Fatalf("performance = %v, want 90", r.Result.Performance)
	}
	if r.Result.Quality != 100 {
		t.Fatalf("quality = %v, want 100 for single-metered line", r.Result.Quality)
	}
}

func TestComputeLine_DowntimeClippedToBucket(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-a",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   100,
	}, allDay())
	// Stoppage starts before the window and ends inside it.
	f.store.SeedManual("line-a", t0.Add(-30*time.Minute), t0.Add(30*time.Minute), "", "")

	w := window(t, t0, t0.Add(2*time.Hour))
	results, err := f.agg.ComputeLine(context.Background(), "line-a", w, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got := results[0].Result.DowntimeMinutes; got != 30 {
		t.Fatalf("downtime = %v, want 30 (clipped)", got)
	}
}

func TestComputeGroup_MultiLinePerformance(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-a",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   100,
	}, allDay())
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-b",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   50,
	}, allDay())
	f.provider.PutGroup("group-1", "line-a", "line-b")

	// Line B lost half the hour to a recorded stoppage.
	f.store.SeedManual("line-b", t0, t0.Add(30*time.Minute), "", "")

	var nextID int64
	f.addCount("line-a", detection.RoleOutput, t0.Add(35*time.Minute), 70, &nextID)
	nextID = 0
	f.addCount("line-b", detection.RoleOutput, t0.Add(35*time.Minute), 30, &nextID)

	w := window(t, t0, t0.Add(time.Hour))
	results, err := f.agg.ComputeGroup(context.Background(), "group-1", w, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// Expected output: line A 100, line B 25; combined real 100 => 80%.
	if got := results[0].Result.Performance; !almostEqual(got, 80) {
		t.Fatalf("performance = %v, want 80", got)
	}
}

func TestComputeGroup_QualityOverDualMeteredSubset(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-dual",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   1000,
		HasInputMetering:  true,
		HasOutputMetering: true,
	}, allDay())
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-single",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   1000,
		HasOutputMetering: true,
	}, allDay())
	f.provider.PutGroup("group-1", "line-dual", "line-single")

	var nextID int64
	f.addCount("line-dual", detection.RoleInput, t0.Add(5*time.Minute), 500, &nextID)
	f.addCount("line-dual", detection.RoleOutput, t0.Add(20*time.Minute), 480, &nextID)
	nextID = 0
	f.addCount("line-single", detection.RoleOutput, t0.Add(20*time.Minute), 999, &nextID)

	w := window(t, t0, t0.Add(time.Hour))
	results, err := f.agg.ComputeGroup(context.Background(), "group-1", w, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got := results[0].Result.Quality; !almostEqual(got, 96) {
		t.Fatalf("quality = %v, want 96", got)
	}
}

func TestComputeGroup_FailedLineYieldsPartialBucket(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-a",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   100,
	}, allDay())
	// line-ghost is in the group but unknown to the provider.
	f.provider.PutGroup("group-1", "line-a", "line-ghost")

	w := window(t, t0, t0.Add(time.Hour))
	results, err := f.agg.ComputeGroup(context.Background(), "group-1", w, 0)
	if err != nil {
		t.Fatalf("one bad line must not abort the group: %v", err)
	}
	r := results[0]
	if !r.Partial {
		t.Fatalf("expected partial flag")
	}
	if len(r.FailedLines) != 1 || r.FailedLines[0] != "line-ghost" {
		t.Fatalf("failed lines = %v", r.FailedLines)
	}
	if r.Result.ScheduledMinutes == 0 {
		t.Fatalf("surviving line must still be computed")
	}
}

func TestComputeGroup_UnknownGroupFails(t *testing.T) {
	f := newFixture(t)
	w := window(t, t0, t0.Add(time.Hour))

	if _, err := f.agg.ComputeGroup(context.Background(), "group-ghost", w, 0); err == nil {
		t.Fatalf("expected error for unknown group")
	}
}

func TestComputeLine_Buckets(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-a",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   100,
	}, allDay())
	f.store.SeedManual("line-a", t0.Add(30*time.Minute), t0.Add(90*time.Minute), "", "")

	w := window(t, t0, t0.Add(2*time.Hour))
	results, err := f.agg.ComputeLine(context.Background(), "line-a", w, time.Hour)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(results))
	}
	if got := results[0].Result.DowntimeMinutes; got != 30 {
		t.Fatalf("bucket 1 downtime = %v, want 30", got)
	}
	if got := results[1].Result.DowntimeMinutes; got != 30 {
		t.Fatalf("bucket 2 downtime = %v, want 30", got)
	}
}

func TestComputeLine_CancelledContext(t *testing.T) {
	f := newFixture(t)
	f.provider.PutLine(masterdata.LineConfig{
		LineID:            "line-a",
		DowntimeThreshold: 5 * time.Minute,
		PerformanceRate:   100,
	}, allDay())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := window(t, t0, t0.Add(time.Hour))
	if _, err := f.agg.ComputeLine(ctx, "line-a", w, 0); err == nil {
		t.Fatalf("expected context error")
	}
}
