package detection

import (
	"context"
	"time"
)

// Feed reads detection events for a line. Implementations return events
// ascending by timestamp with ids monotonically increasing per line.
type Feed interface {
	// GetDetections returns events for the given area role within [start, end).
	GetDetections(ctx context.Context, lineID string, role AreaRole, start, end time.Time) ([]DetectionEvent, error)

	// GetDetectionsAfter returns events with id strictly greater than afterID,
	// ascending, capped at limit (limit <= 0 means no cap).
	GetDetectionsAfter(ctx context.Context, lineID string, role AreaRole, afterID int64, limit int) ([]DetectionEvent, error)

	// LastDetectionUpTo returns the single event with the highest id not
	// exceeding maxID, or ok=false when none exists.
	LastDetectionUpTo(ctx context.Context, lineID string, role AreaRole, maxID int64) (DetectionEvent, bool, error)

	// CountDetections counts events for the given area role within [start, end).
	CountDetections(ctx context.Context, lineID string, role AreaRole, start, end time.Time) (int64, error)
}
