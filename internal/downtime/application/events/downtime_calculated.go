package events

import (
	"time"

	downtime "factoryline-cloud/internal/downtime/domain"
)

// DowntimeCalculated is published after an incremental run persisted at
// least one calculated interval.
type DowntimeCalculated struct {
	LineID        string
	Intervals     []downtime.Interval
	NewCheckpoint int64
	OccurredAt    time.Time
}
