package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	downtime "factoryline-cloud/internal/downtime/domain"
)

// DowntimeStore is an in-memory store mirroring the Postgres semantics,
// including the optimistic checkpoint guard on Append.
type DowntimeStore struct {
	mu        sync.RWMutex
	intervals map[string][]downtime.Interval
	nextID    int
}

// NewDowntimeStore constructs an empty store.
func NewDowntimeStore() *DowntimeStore {
	return &DowntimeStore{intervals: make(map[string][]downtime.Interval)}
}

// SeedManual inserts an operator-entered interval, as the external manual
// path would.
func (s *DowntimeStore) SeedManual(lineID string, start, end time.Time, reasonCode, reason string) downtime.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	interval := downtime.Interval{
		EventID:    fmt.Sprintf("manual-%d", s.nextID),
		LineID:     lineID,
		Start:      start,
		End:        end,
		Source:     downtime.SourceDB,
		Reason:     reason,
		ReasonCode: reasonCode,
	}
	s.intervals[lineID] = append(s.intervals[lineID], interval)
	return interval
}

// LastProcessedDetectionID derives the checkpoint from stored calculated
// intervals.
func (s *DowntimeStore) LastProcessedDetectionID(ctx context.Context, lineID string) (downtime.Checkpoint, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkpointLocked(lineID), nil
}

func (s *DowntimeStore) checkpointLocked(lineID string) downtime.Checkpoint {
	var checkpoint downtime.Checkpoint
	for _, i := range s.intervals[lineID] {
		if i.Source != downtime.SourceCalculated {
			continue
		}
		if !checkpoint.OK || i.ClosedBy > checkpoint.ID {
			checkpoint = downtime.Checkpoint{ID: i.ClosedBy, OK: true}
		}
	}
	return checkpoint
}

// Append stores a calculated batch atomically if the checkpoint still
// equals prev.
func (s *DowntimeStore) Append(ctx context.Context, lineID string, intervals []downtime.Interval, prev downtime.Checkpoint) error {
	_ = ctx
	if len(intervals) == 0 {
		return nil
	}
	for _, i := range intervals {
		if err := i.Validate(); err != nil {
			return err
		}
		if i.Source != downtime.SourceCalculated {
			return downtime.ErrInvalidSource
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkpointLocked(lineID) != prev {
		return downtime.ErrCheckpointConflict
	}
	for _, i := range intervals {
		i.LineID = lineID
		i.EventID = fmt.Sprintf("calc-%s-%d", lineID, i.Start.UTC().UnixNano())
		s.intervals[lineID] = append(s.intervals[lineID], i)
	}
	return nil
}

// Query returns intervals overlapping [start, end), sorted by start.
func (s *DowntimeStore) Query(ctx context.Context, lineID string, start, end time.Time) ([]downtime.Interval, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []downtime.Interval
	for _, i := range s.intervals[lineID] {
		if i.Start.Before(end) && i.End.After(start) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// UpdateReason annotates a db-sourced interval.
func (s *DowntimeStore) UpdateReason(ctx context.Context, eventID, reasonCode, reason string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for lineID, intervals := range s.intervals {
		for idx, i := range intervals {
			if i.EventID != eventID {
				continue
			}
			if i.Source != downtime.SourceDB {
				return downtime.ErrNotDBSourced
			}
			intervals[idx].ReasonCode = reasonCode
			intervals[idx].Reason = reason
			s.intervals[lineID] = intervals
			return nil
		}
	}
	return downtime.ErrEventNotFound
}

// Delete removes an interval by id.
func (s *DowntimeStore) Delete(ctx context.Context, eventID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for lineID, intervals := range s.intervals {
		for idx, i := range intervals {
			if i.EventID != eventID {
				continue
			}
			s.intervals[lineID] = append(intervals[:idx:idx], intervals[idx+1:]...)
			return nil
		}
	}
	return downtime.ErrEventNotFound
}
