package downtime

import (
	"context"
	"time"
)

// Checkpoint is the highest detection id already accounted for by persisted
// calculated intervals. OK is false when nothing has been calculated yet.
type Checkpoint struct {
	ID int64
	OK bool
}

// Store persists downtime intervals for all lines. The line id is a
// partition selector; implementations may back it with one partitioned
// table or per-line physical storage behind the same interface.
type Store interface {
	// LastProcessedDetectionID derives the line checkpoint as the maximum
	// closing detection id recorded alongside calculated intervals.
	// Re-deriving from the same persisted state is stable.
	LastProcessedDetectionID(ctx context.Context, lineID string) (Checkpoint, error)

	// Append writes a batch of calculated intervals atomically. The write
	// succeeds only if the stored checkpoint still equals prev; otherwise it
	// returns ErrCheckpointConflict and persists nothing.
	Append(ctx context.Context, lineID string, intervals []Interval, prev Checkpoint) error

	// Query returns all intervals of every source overlapping [start, end),
	// sorted by start.
	Query(ctx context.Context, lineID string, start, end time.Time) ([]Interval, error)

	// UpdateReason annotates a db-sourced interval with an operator reason.
	// Returns ErrNotDBSourced for calculated intervals.
	UpdateReason(ctx context.Context, eventID, reasonCode, reason string) error

	// Delete removes an interval. Only the explicit manual path calls this;
	// the engine never deletes automatically.
	Delete(ctx context.Context, eventID string) error
}
