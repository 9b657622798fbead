package downtime

import "time"

// Source tells which authority produced a downtime interval.
type Source string

const (
	// SourceDB marks operator-entered intervals. They are ground truth and
	// are never mutated by this engine.
	SourceDB Source = "db"
	// SourceCalculated marks intervals inferred from detection gaps. They
	// may be trimmed or discarded when they contradict db intervals.
	SourceCalculated Source = "calculated"
)

// IsValid checks the source is one of the supported values.
func (s Source) IsValid() bool {
	return s == SourceDB || s == SourceCalculated
}

// Interval is a half-open stoppage range [Start, End).
// ClosedBy is the id of the detection that closed a calculated interval;
// it is zero for db-sourced intervals.
type Interval struct {
	EventID    string
	LineID     string
	Start      time.Time
	End        time.Time
	Source     Source
	Reason     string
	ReasonCode string
	ClosedBy   int64
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Validate checks interval invariants: start < end, known source.
func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() {
		return ErrZeroTimestamp
	}
	if !i.Start.Before(i.End) {
		return ErrInvalidInterval
	}
	if !i.Source.IsValid() {
		return ErrInvalidSource
	}
	return nil
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Contains reports whether other lies entirely inside i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}
