package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	detection "factoryline-cloud/internal/detection/domain"
	"factoryline-cloud/internal/downtime/application/events"
	downtime "factoryline-cloud/internal/downtime/domain"
	masterdata "factoryline-cloud/internal/masterdata/domain"
	"factoryline-cloud/internal/observability/metrics"
)

const defaultFetchLimit = 10000

// EventPublisher is the minimal publish interface the calculator needs.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Calculator runs the checkpoint-driven incremental downtime calculation
// for one line at a time. Lines share no state; the downtime store is the
// only synchronization point and its conditional append is what makes
// overlapping runs safe.
type Calculator struct {
	feed       detection.Feed
	store      downtime.Store
	provider   masterdata.Provider
	publisher  EventPublisher
	logger     *log.Logger
	fetchLimit int

	mu      sync.Mutex
	running map[string]struct{}
}

// CalculatorOption configures the calculator.
type CalculatorOption func(*Calculator)

// WithFetchLimit caps how many detections one page of a run reads. A run
// pages forward until it persists a batch or drains the tail; after a
// persisted batch the next scheduled tick resumes from the new checkpoint.
func WithFetchLimit(limit int) CalculatorOption {
	return func(c *Calculator) {
		if limit > 0 {
			c.fetchLimit = limit
		}
	}
}

// NewCalculator constructs a calculator. The publisher may be nil.
func NewCalculator(feed detection.Feed, store downtime.Store, provider masterdata.Provider, publisher EventPublisher, logger *log.Logger, opts ...CalculatorOption) (*Calculator, error) {
	if feed == nil {
		return nil, errors.New("calculator: nil feed")
	}
	if store == nil {
		return nil, errors.New("calculator: nil store")
	}
	if provider == nil {
		return nil, errors.New("calculator: nil provider")
	}
	calculator := &Calculator{
		feed:       feed,
		store:      store,
		provider:   provider,
		publisher:  publisher,
		logger:     logger,
		fetchLimit: defaultFetchLimit,
		running:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(calculator)
	}
	return calculator, nil
}

// CalculateIncremental processes detections beyond the line checkpoint and
// persists the calculated intervals that survive the merge against operator
// entries. It returns the persisted intervals.
//
// No detections beyond the checkpoint is a no-op. A checkpoint conflict or
// an already-running line is a benign skip; the next scheduled tick retries.
func (c *Calculator) CalculateIncremental(ctx context.Context, lineID string) ([]downtime.Interval, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	emitted := 0
	defer func() {
		metrics.ObserveDowntimeRun(result, time.Since(start), emitted)
	}()

	if lineID == "" {
		result = metrics.ResultError
		return nil, masterdata.ErrEmptyLineID
	}
	if !c.acquire(lineID) {
		result = metrics.ResultSkipped
		return nil, nil
	}
	defer c.release(lineID)

	cfg, err := c.provider.GetLineConfig(ctx, lineID)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("calculator: line %s config: %w", lineID, err)
	}

	checkpoint, err := c.store.LastProcessedDetectionID(ctx, lineID)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("calculator: line %s checkpoint: %w", lineID, err)
	}

	cursor := checkpoint
	for {
		if err := ctx.Err(); err != nil {
			result = metrics.ResultError
			return nil, err
		}

		sequence, truncated, err := c.fetchSequence(ctx, lineID, cursor)
		if err != nil {
			result = metrics.ResultError
			return nil, fmt.Errorf("calculator: line %s detections: %w", lineID, err)
		}
		if len(sequence) < 2 {
			return nil, nil
		}

		candidates := downtime.AnalyzeGaps(sequence, cfg.DowntimeThreshold)
		candidates = dropAlreadyCovered(candidates, checkpoint)
		for i := range candidates {
			candidates[i].LineID = lineID
		}

		var remainder []downtime.Interval
		if len(candidates) > 0 {
			persisted, err := c.store.Query(ctx, lineID, sequence[0].Timestamp, sequence[len(sequence)-1].Timestamp)
			if err != nil {
				result = metrics.ResultError
				return nil, fmt.Errorf("calculator: line %s persisted intervals: %w", lineID, err)
			}
			remainder = downtime.Remainder(candidates, persisted)
		}
		if len(remainder) == 0 {
			// Nothing to persist on this page, so the checkpoint stays put.
			// A truncated tail may still hide a later gap; keep reading with
			// a local cursor instead of re-fetching the same prefix on every
			// tick.
			if !truncated {
				return nil, nil
			}
			cursor = downtime.Checkpoint{ID: sequence[len(sequence)-1].ID, OK: true}
			continue
		}

		if err := c.store.Append(ctx, lineID, remainder, checkpoint); err != nil {
			if errors.Is(err, downtime.ErrCheckpointConflict) {
				metrics.IncCheckpointConflict()
				result = metrics.ResultSkipped
				return nil, nil
			}
			result = metrics.ResultError
			return nil, fmt.Errorf("calculator: line %s append: %w", lineID, err)
		}
		emitted = len(remainder)

		c.publishCalculated(ctx, lineID, remainder)
		return remainder, nil
	}
}

// fetchSequence loads one page of detections past the cursor plus the single
// preceding detection, so a gap spanning the page boundary is neither lost
// nor double-counted. The second return reports whether the page filled the
// fetch limit and more detections may follow.
func (c *Calculator) fetchSequence(ctx context.Context, lineID string, cursor downtime.Checkpoint) ([]detection.DetectionEvent, bool, error) {
	var afterID int64
	if cursor.OK {
		afterID = cursor.ID
	}

	tail, err := c.feed.GetDetectionsAfter(ctx, lineID, detection.RoleOutput, afterID, c.fetchLimit)
	if err != nil {
		return nil, false, err
	}
	truncated := c.fetchLimit > 0 && len(tail) == c.fetchLimit
	if !cursor.OK {
		return tail, truncated, nil
	}

	seed, ok, err := c.feed.LastDetectionUpTo(ctx, lineID, detection.RoleOutput, cursor.ID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return tail, truncated, nil
	}
	return append([]detection.DetectionEvent{seed}, tail...), truncated, nil
}

// dropAlreadyCovered keeps only intervals closed by a detection beyond the
// checkpoint; everything else was persisted by a previous run.
func dropAlreadyCovered(candidates []downtime.Interval, checkpoint downtime.Checkpoint) []downtime.Interval {
	if !checkpoint.OK {
		return candidates
	}
	kept := candidates[:0]
	for _, candidate := range candidates {
		if candidate.ClosedBy > checkpoint.ID {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func (c *Calculator) publishCalculated(ctx context.Context, lineID string, intervals []downtime.Interval) {
	if c.publisher == nil {
		return
	}
	event := events.DowntimeCalculated{
		LineID:        lineID,
		Intervals:     intervals,
		NewCheckpoint: maxClosedBy(intervals),
		OccurredAt:    time.Now().UTC(),
	}
	if err := c.publisher.Publish(ctx, event); err != nil && c.logger != nil {
		c.logger.Printf("downtime event publish failed: line=%s err=%v", lineID, err)
	}
}

func maxClosedBy(intervals []downtime.Interval) int64 {
	var max int64
	for _, i := range intervals {
		if i.ClosedBy > max {
			max = i.ClosedBy
		}
	}
	return max
}

func (c *Calculator) acquire(lineID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.running[lineID]; busy {
		return false
	}
	c.running[lineID] = struct{}{}
	return true
}

func (c *Calculator) release(lineID string) {
	c.mu.Lock()
	delete(c.running, lineID)
	c.mu.Unlock()
}
