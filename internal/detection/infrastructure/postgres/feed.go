package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	detection "factoryline-cloud/internal/detection/domain"
)

const defaultDetectionsTable = "detections"

// DetectionFeed is a read-only Postgres implementation of the detection
// feed. The line id selects a partition of one shared table.
type DetectionFeed struct {
	db    *sql.DB
	table string
}

// FeedOption configures the feed.
type FeedOption func(*DetectionFeed)

// WithTable overrides the default table name.
func WithTable(table string) FeedOption {
	return func(feed *DetectionFeed) {
		if table != "" {
			feed.table = table
		}
	}
}

// NewDetectionFeed constructs a feed with default table name.
func NewDetectionFeed(db *sql.DB, opts ...FeedOption) *DetectionFeed {
	feed := &DetectionFeed{db: db, table: defaultDetectionsTable}
	for _, opt := range opts {
		opt(feed)
	}
	return feed
}

// GetDetections returns events for the given area role within [start, end),
// ascending by timestamp.
func (f *DetectionFeed) GetDetections(ctx context.Context, lineID string, role detection.AreaRole, start, end time.Time) ([]detection.DetectionEvent, error) {
	if err := f.check(lineID, role); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT id, ts, area_id, area_role, product_id
FROM %s
WHERE line_id = $1
	AND area_role = $2
	AND ts >= $3
	AND ts < $4
ORDER BY ts ASC, id ASC`, f.table)

	rows, err := f.db.QueryContext(ctx, query, lineID, string(role), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetDetectionsAfter returns events with id strictly greater than afterID.
func (f *DetectionFeed) GetDetectionsAfter(ctx context.Context, lineID string, role detection.AreaRole, afterID int64, limit int) ([]detection.DetectionEvent, error) {
	if err := f.check(lineID, role); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT id, ts, area_id, area_role, product_id
FROM %s
WHERE line_id = $1
	AND area_role = $2
	AND id > $3
ORDER BY id ASC`, f.table)
	args := []any{lineID, string(role), afterID}
	if limit > 0 {
		query += "\nLIMIT $4"
		args = append(args, limit)
	}

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// LastDetectionUpTo returns the event with the highest id not exceeding maxID.
func (f *DetectionFeed) LastDetectionUpTo(ctx context.Context, lineID string, role detection.AreaRole, maxID int64) (detection.DetectionEvent, bool, error) {
	if err := f.check(lineID, role); err != nil {
		return detection.DetectionEvent{}, false, err
	}
	query := fmt.Sprintf(`
SELECT id, ts, area_id, area_role, product_id
FROM %s
WHERE line_id = $1
	AND area_role = $2
	AND id <= $3
ORDER BY id DESC
LIMIT 1`, f.table)

	var event detection.DetectionEvent
	var roleValue string
	err := f.db.QueryRowContext(ctx, query, lineID, string(role), maxID).Scan(
		&event.ID, &event.Timestamp, &event.AreaID, &roleValue, &event.ProductID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return detection.DetectionEvent{}, false, nil
	}
	if err != nil {
		return detection.DetectionEvent{}, false, err
	}
	event.Role = detection.AreaRole(roleValue)
	return event, true, nil
}

// CountDetections counts events for the given area role within [start, end).
func (f *DetectionFeed) CountDetections(ctx context.Context, lineID string, role detection.AreaRole, start, end time.Time) (int64, error) {
	if err := f.check(lineID, role); err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`
SELECT COUNT(*)
FROM %s
WHERE line_id = $1
	AND area_role = $2
	AND ts >= $3
	AND ts < $4`, f.table)

	var count int64
	if err := f.db.QueryRowContext(ctx, query, lineID, string(role), start, end).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (f *DetectionFeed) check(lineID string, role detection.AreaRole) error {
	if f == nil || f.db == nil {
		return errors.New("detection feed: nil db")
	}
	if lineID == "" {
		return errors.New("detection feed: empty line id")
	}
	if !role.IsValid() {
		return detection.ErrInvalidAreaRole
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]detection.DetectionEvent, error) {
	var events []detection.DetectionEvent
	for rows.Next() {
		var event detection.DetectionEvent
		var role string
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.AreaID, &role, &event.ProductID); err != nil {
			return nil, err
		}
		event.Role = detection.AreaRole(role)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
