package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	detection "factoryline-cloud/internal/detection/domain"
)

// DetectionFeed is an in-memory feed for tests and tooling.
type DetectionFeed struct {
	mu     sync.RWMutex
	events map[string][]detection.DetectionEvent
}

// NewDetectionFeed constructs an empty feed.
func NewDetectionFeed() *DetectionFeed {
	return &DetectionFeed{events: make(map[string][]detection.DetectionEvent)}
}

// Add registers events for a line. Events are kept sorted by id.
func (f *DetectionFeed) Add(lineID string, events ...detection.DetectionEvent) {
	f.mu.Lock()
	f.events[lineID] = append(f.events[lineID], events...)
	sort.Slice(f.events[lineID], func(i, j int) bool {
		return f.events[lineID][i].ID < f.events[lineID][j].ID
	})
	f.mu.Unlock()
}

// GetDetections returns events for the given role within [start, end).
func (f *DetectionFeed) GetDetections(ctx context.Context, lineID string, role detection.AreaRole, start, end time.Time) ([]detection.DetectionEvent, error) {
	_ = ctx
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []detection.DetectionEvent
	for _, event := range f.events[lineID] {
		if event.Role != role {
			continue
		}
		if event.Timestamp.Before(start) || !event.Timestamp.Before(end) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

// GetDetectionsAfter returns events with id strictly greater than afterID.
func (f *DetectionFeed) GetDetectionsAfter(ctx context.Context, lineID string, role detection.AreaRole, afterID int64, limit int) ([]detection.DetectionEvent, error) {
	_ = ctx
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []detection.DetectionEvent
	for _, event := range f.events[lineID] {
		if event.Role != role || event.ID <= afterID {
			continue
		}
		out = append(out, event)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// LastDetectionUpTo returns the event with the highest id not exceeding maxID.
func (f *DetectionFeed) LastDetectionUpTo(ctx context.Context, lineID string, role detection.AreaRole, maxID int64) (detection.DetectionEvent, bool, error) {
	_ = ctx
	f.mu.RLock()
	defer f.mu.RUnlock()

	var found detection.DetectionEvent
	var ok bool
	for _, event := range f.events[lineID] {
		if event.Role != role || event.ID > maxID {
			continue
		}
		if !ok || event.ID > found.ID {
			found = event
			ok = true
		}
	}
	return found, ok, nil
}

// CountDetections counts events for the given role within [start, end).
func (f *DetectionFeed) CountDetections(ctx context.Context, lineID string, role detection.AreaRole, start, end time.Time) (int64, error) {
	events, err := f.GetDetections(ctx, lineID, role, start, end)
	if err != nil {
		return 0, err
	}
	return int64(len(events)), nil
}
