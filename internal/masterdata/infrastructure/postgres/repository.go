package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	masterdata "factoryline-cloud/internal/masterdata/domain"
)

// LineProvider is a Postgres implementation of the configuration provider.
type LineProvider struct {
	db *sql.DB
}

// NewLineProvider constructs a provider.
func NewLineProvider(db *sql.DB) *LineProvider {
	return &LineProvider{db: db}
}

// GetLineConfig loads the configuration of one line.
func (p *LineProvider) GetLineConfig(ctx context.Context, lineID string) (masterdata.LineConfig, error) {
	if err := p.check(lineID); err != nil {
		return masterdata.LineConfig{}, err
	}

	var cfg masterdata.LineConfig
	var thresholdSeconds int64
	err := p.db.QueryRowContext(ctx, `
SELECT line_id, downtime_threshold_seconds, performance_rate, has_input_metering, has_output_metering
FROM line_configs
WHERE line_id = $1`, lineID).Scan(
		&cfg.LineID,
		&thresholdSeconds,
		&cfg.PerformanceRate,
		&cfg.HasInputMetering,
		&cfg.HasOutputMetering,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return masterdata.LineConfig{}, masterdata.ErrLineNotFound
	}
	if err != nil {
		return masterdata.LineConfig{}, err
	}
	cfg.DowntimeThreshold = time.Duration(thresholdSeconds) * time.Second
	return cfg, nil
}

// GetShiftSchedule loads the ordered shift schedule of one line.
func (p *LineProvider) GetShiftSchedule(ctx context.Context, lineID string) (masterdata.ShiftSchedule, error) {
	if err := p.check(lineID); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
SELECT start_hour, start_minute, end_hour, end_minute, overnight
FROM line_shifts
WHERE line_id = $1
ORDER BY start_hour ASC, start_minute ASC`, lineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule masterdata.ShiftSchedule
	for rows.Next() {
		var shift masterdata.Shift
		if err := rows.Scan(
			&shift.Start.Hour, &shift.Start.Minute,
			&shift.End.Hour, &shift.End.Minute,
			&shift.Overnight,
		); err != nil {
			return nil, err
		}
		schedule = append(schedule, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schedule) == 0 {
		// Distinguish an unknown line from a line with no shifts.
		if _, err := p.GetLineConfig(ctx, lineID); err != nil {
			return nil, err
		}
	}
	return schedule, nil
}

// GetLineGroup resolves a group id into its member line ids.
func (p *LineProvider) GetLineGroup(ctx context.Context, groupID string) ([]string, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("line provider: nil db")
	}
	if groupID == "" {
		return nil, masterdata.ErrGroupNotFound
	}

	rows, err := p.db.QueryContext(ctx, `
SELECT line_id
FROM line_group_members
WHERE group_id = $1
ORDER BY line_id ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var lineID string
		if err := rows.Scan(&lineID); err != nil {
			return nil, err
		}
		lines = append(lines, lineID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, masterdata.ErrGroupNotFound
	}
	return lines, nil
}

func (p *LineProvider) check(lineID string) error {
	if p == nil || p.db == nil {
		return errors.New("line provider: nil db")
	}
	if lineID == "" {
		return masterdata.ErrLineNotFound
	}
	return nil
}
