package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/db"
	"parcel-booking-service/internal/platform/obs"
)

// SQLTrackingRepository stores tracking history as an append-only log
// keyed by (tracking_id, seq).
type SQLTrackingRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLTrackingRepository(conn *sql.DB, dialect db.Dialect) *SQLTrackingRepository {
	return &SQLTrackingRepository{DB: conn, Dialect: dialect}
}

func (s *SQLTrackingRepository) Append(ctx context.Context, e domain.TrackingEvent) (err error) {
	defer obs.Time(ctx, "trackings.Append")(&err)

	if s.DB == nil {
		return errors.New("sql tracking repository: DB is nil")
	}
	if e.TrackingID == "" {
		return errors.New("append tracking: tracking id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append tracking: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	q := `SELECT COALESCE(MAX(seq), 0) FROM trackings WHERE tracking_id = ?;`
	if err := tx.QueryRowContext(ctx, s.Dialect.Rebind(q), e.TrackingID).Scan(&seq); err != nil {
		return fmt.Errorf("append tracking %s: next seq: %w", e.TrackingID, err)
	}

	insert := `
	INSERT INTO trackings (
		tracking_id,
		seq,
		status,
		details,
		location,
		updated_by,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, s.Dialect.Rebind(insert),
		e.TrackingID, seq+1, e.Status, e.Details, e.Location, e.UpdatedBy, toUnix(e.CreatedAt),
	); err != nil {
		return fmt.Errorf("append tracking %s: insert: %w", e.TrackingID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append tracking %s: commit: %w", e.TrackingID, err)
	}
	return nil
}

// Return the tracking history for one parcel, oldest first.
func (s *SQLTrackingRepository) History(ctx context.Context, trackingID string) (_ []domain.TrackingEvent, err error) {
	defer obs.Time(ctx, "trackings.History")(&err)

	if s.DB == nil {
		return nil, errors.New("sql tracking repository: DB is nil")
	}

	q := `
	SELECT tracking_id, status, details, location, updated_by, created_at
	FROM trackings
	WHERE tracking_id = ?
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q), trackingID)
	if err != nil {
		return nil, fmt.Errorf("tracking history %s: query: %w", trackingID, err)
	}
	defer rows.Close()

	out := make([]domain.TrackingEvent, 0, 8)
	for rows.Next() {
		var e domain.TrackingEvent
		var at int64
		if err := rows.Scan(&e.TrackingID, &e.Status, &e.Details, &e.Location, &e.UpdatedBy, &at); err != nil {
			return nil, fmt.Errorf("tracking history %s: scan row: %w", trackingID, err)
		}
		e.CreatedAt = fromUnix(at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tracking history %s: row iteration: %w", trackingID, err)
	}

	return out, nil
}
