package application

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler triggers the incremental calculation for every configured line
// on a fixed interval. Lines are independent, so each tick fans out over a
// bounded worker pool sized to what the storage layer tolerates. A failing
// line is logged and never blocks the others.
type Scheduler struct {
	calculator *Calculator
	lines      []string
	interval   time.Duration
	workers    int
	logger     *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(calculator *Calculator, lines []string, interval time.Duration, workers int, logger *log.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if workers <= 0 {
		workers = 4
	}
	return &Scheduler{
		calculator: calculator,
		lines:      lines,
		interval:   interval,
		workers:    workers,
		logger:     logger,
	}
}

// Start begins the scheduler loop and blocks until ctx is cancelled. The
// first pass runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.calculator == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce processes every configured line through the worker pool and
// returns when all lines finished.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if len(s.lines) == 0 {
		return
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for _, lineID := range s.lines {
		if lineID == "" {
			continue
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(lineID string) {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := s.calculator.CalculateIncremental(ctx, lineID); err != nil && s.logger != nil {
				s.logger.Printf("downtime calc error: line=%s err=%v", lineID, err)
			}
		}(lineID)
	}
	wg.Wait()
}
