package masterdata

import "context"

// Provider resolves line configuration, shift schedules and line groups.
// Unknown lines or groups fail with ErrLineNotFound / ErrGroupNotFound;
// both are non-retryable input errors.
type Provider interface {
	GetLineConfig(ctx context.Context, lineID string) (LineConfig, error)
	GetShiftSchedule(ctx context.Context, lineID string) (ShiftSchedule, error)
	GetLineGroup(ctx context.Context, groupID string) ([]string, error)
}
