package detection

import "time"

// AreaRole tells where on the line a monitoring area sits.
type AreaRole string

const (
	RoleInput   AreaRole = "input"
	RoleOutput  AreaRole = "output"
	RoleDiscard AreaRole = "discard"
)

// IsValid checks the role is one of the supported values.
func (r AreaRole) IsValid() bool {
	switch r {
	case RoleInput, RoleOutput, RoleDiscard:
		return true
	default:
		return false
	}
}

// DetectionEvent is a single sensor reading at a monitoring area.
// Events are immutable and owned by the ingestion path; this engine
// only reads them. IDs are monotonically increasing per line.
type DetectionEvent struct {
	ID        int64
	Timestamp time.Time
	AreaID    string
	Role      AreaRole
	ProductID string
}

// Validate checks event invariants.
func (e DetectionEvent) Validate() error {
	if e.ID <= 0 {
		return ErrInvalidEventID
	}
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if !e.Role.IsValid() {
		return ErrInvalidAreaRole
	}
	return nil
}
