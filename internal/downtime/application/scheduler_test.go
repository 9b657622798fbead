package application_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	detection "factoryline-cloud/internal/detection/domain"
	detectionmemory "factoryline-cloud/internal/detection/infrastructure/memory"
	"factoryline-cloud/internal/downtime/application"
	downtime "factoryline-cloud/internal/downtime/domain"
	downtimememory "factoryline-cloud/internal/downtime/infrastructure/memory"
	masterdata "factoryline-cloud/internal/masterdata/domain"
	masterdatamemory "factoryline-cloud/internal/masterdata/infrastructure/memory"
)

func TestSchedulerRunOnce_ProcessesAllLines(t *testing.T) {
	feed := detectionmemory.NewDetectionFeed()
	store := downtimememory.NewDowntimeStore()
	provider := masterdatamemory.NewLineProvider()
	logger := log.New(io.Discard, "", 0)

	lines := []string{"line-1", "line-2", "line-3"}
	for _, lineID := range lines {
		provider.PutLine(masterdata.LineConfig{
			LineID:            lineID,
			DowntimeThreshold: 5 * time.Minute,
			PerformanceRate:   100,
		}, nil)
		feed.Add(lineID,
			detection.DetectionEvent{ID: 1, Timestamp: t0, AreaID: "out", Role: detection.RoleOutput},
			detection.DetectionEvent{ID: 2, Timestamp: t0.Add(30 * time.Minute), AreaID: "out", Role: detection.RoleOutput},
		)
	}

	calc, err := application.NewCalculator(feed, store, provider, nil, logger)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	// Include an unknown line: its failure must not block the others.
	scheduler := application.NewScheduler(calc, append(lines, "line-ghost"), time.Minute, 2, logger)
	scheduler.RunOnce(context.Background())

	for _, lineID := range lines {
		stored, err := store.Query(context.Background(), lineID, t0.Add(-time.Hour), t0.Add(time.Hour))
		if err != nil {
			t.Fatalf("query %s: %v", lineID, err)
		}
		if len(stored) != 1 || stored[0].Source != downtime.SourceCalculated {
			t.Fatalf("line %s: stored = %+v", lineID, stored)
		}
	}
}

func TestSchedulerRunOnce_CancelledContextStopsFanOut(t *testing.T) {
	feed := detectionmemory.NewDetectionFeed()
	store := downtimememory.NewDowntimeStore()
	provider := masterdatamemory.NewLineProvider()
	logger := log.New(io.Discard, "", 0)

	calc, err := application.NewCalculator(feed, store, provider, nil, logger)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	scheduler := application.NewScheduler(calc, []string{"line-1", "line-2"}, time.Minute, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Must return promptly instead of blocking on the pool.
	scheduler.RunOnce(ctx)
}
