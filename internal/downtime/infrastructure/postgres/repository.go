package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	downtime "factoryline-cloud/internal/downtime/domain"
)

const defaultDowntimeTable = "downtime_events"

// DowntimeStore is a Postgres implementation of the downtime store. One
// partitioned table holds every line; line_id is the partition selector.
type DowntimeStore struct {
	db    *sql.DB
	table string
}

// StoreOption configures the store.
type StoreOption func(*DowntimeStore)

// WithTable overrides the default table name.
func WithTable(table string) StoreOption {
	return func(store *DowntimeStore) {
		if table != "" {
			store.table = table
		}
	}
}

// NewDowntimeStore constructs a store with default table name.
func NewDowntimeStore(db *sql.DB, opts ...StoreOption) *DowntimeStore {
	store := &DowntimeStore{db: db, table: defaultDowntimeTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// LastProcessedDetectionID derives the line checkpoint from persisted
// calculated intervals.
func (s *DowntimeStore) LastProcessedDetectionID(ctx context.Context, lineID string) (downtime.Checkpoint, error) {
	if err := s.check(lineID); err != nil {
		return downtime.Checkpoint{}, err
	}
	query := fmt.Sprintf(`
SELECT MAX(last_detection_id)
FROM %s
WHERE line_id = $1 AND source = $2`, s.table)

	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, lineID, string(downtime.SourceCalculated)).Scan(&max); err != nil {
		return downtime.Checkpoint{}, err
	}
	if !max.Valid {
		return downtime.Checkpoint{}, nil
	}
	return downtime.Checkpoint{ID: max.Int64, OK: true}, nil
}

// Append writes a calculated batch in one transaction, guarded by an
// optimistic check on the checkpoint. A per-line advisory lock serializes
// concurrent appends so the check-then-insert cannot race.
func (s *DowntimeStore) Append(ctx context.Context, lineID string, intervals []downtime.Interval, prev downtime.Checkpoint) error {
	if err := s.check(lineID); err != nil {
		return err
	}
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
		if i.ClosedBy <= 0 {
			return downtime.ErrInvalidInterval
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lineID); err != nil {
		_ = tx.Rollback()
		return err
	}

	checkQuery := fmt.Sprintf(`
SELECT MAX(last_detection_id)
FROM %s
WHERE line_id = $1 AND source = $2`, s.table)
	var current sql.NullInt64
	if err := tx.QueryRowContext(ctx, checkQuery, lineID, string(downtime.SourceCalculated)).Scan(&current); err != nil {
		_ = tx.Rollback()
		return err
	}
	if current.Valid != prev.OK || (current.Valid && current.Int64 != prev.ID) {
		_ = tx.Rollback()
		return downtime.ErrCheckpointConflict
	}

	insertQuery := fmt.Sprintf(`
INSERT INTO %s (
	event_id, line_id, start_at, end_at, source, reason, reason_code, last_detection_id, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, NOW()
)
ON CONFLICT (event_id) DO NOTHING`, s.table)

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, i := range intervals {
		eventID := calculatedEventID(lineID, i.Start)
		if _, err := stmt.ExecContext(
			ctx,
			eventID,
			lineID,
			i.Start,
			i.End,
			string(downtime.SourceCalculated),
			nullableString(i.Reason),
			nullableString(i.ReasonCode),
			i.ClosedBy,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns intervals of every source overlapping [start, end),
// sorted by start.
func (s *DowntimeStore) Query(ctx context.Context, lineID string, start, end time.Time) ([]downtime.Interval, error) {
	if err := s.check(lineID); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT event_id, line_id, start_at, end_at, source, reason, reason_code, last_detection_id
FROM %s
WHERE line_id = $1
	AND start_at < $3
	AND end_at > $2
ORDER BY start_at ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, query, lineID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []downtime.Interval
	for rows.Next() {
		var i downtime.Interval
		var source string
		var reason, reasonCode sql.NullString
		var closedBy sql.NullInt64
		if err := rows.Scan(&i.EventID, &i.LineID, &i.Start, &i.End, &source, &reason, &reasonCode, &closedBy); err != nil {
			return nil, err
		}
		i.Source = downtime.Source(source)
		i.Reason = reason.String
		i.ReasonCode = reasonCode.String
		i.ClosedBy = closedBy.Int64
		intervals = append(intervals, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return intervals, nil
}

// UpdateReason annotates a db-sourced interval.
func (s *DowntimeStore) UpdateReason(ctx context.Context, eventID, reasonCode, reason string) error {
	if s == nil || s.db == nil {
		return errors.New("downtime store: nil db")
	}
	if eventID == "" {
		return downtime.ErrEventNotFound
	}

	query := fmt.Sprintf(`
UPDATE %s
SET reason_code = $2, reason = $3, updated_at = NOW()
WHERE event_id = $1 AND source = $4`, s.table)
	result, err := s.db.ExecContext(ctx, query, eventID, reasonCode, reason, string(downtime.SourceDB))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	existsQuery := fmt.Sprintf("SELECT source FROM %s WHERE event_id = $1", s.table)
	var source string
	err = s.db.QueryRowContext(ctx, existsQuery, eventID).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return downtime.ErrEventNotFound
	}
	if err != nil {
		return err
	}
	return downtime.ErrNotDBSourced
}

// Delete removes an interval. The engine never calls this; it exists for
// the explicit manual path only.
func (s *DowntimeStore) Delete(ctx context.Context, eventID string) error {
	if s == nil || s.db == nil {
		return errors.New("downtime store: nil db")
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE event_id = $1", s.table)
	result, err := s.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return downtime.ErrEventNotFound
	}
	return nil
}

func (s *DowntimeStore) check(lineID string) error {
	if s == nil || s.db == nil {
		return errors.New("downtime store: nil db")
	}
	if lineID == "" {
		return errors.New("downtime store: empty line id")
	}
	return nil
}

// calculatedEventID is deterministic so a retried batch upserts onto the
// same rows instead of duplicating them.
func calculatedEventID(lineID string, start time.Time) string {
	return fmt.Sprintf("calc-%s-%d", lineID, start.UTC().UnixNano())
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
