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

type SQLRiderRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRiderRepository(conn *sql.DB, dialect db.Dialect) *SQLRiderRepository {
	return &SQLRiderRepository{DB: conn, Dialect: dialect}
}

const riderColumns = `id, email, name, phone, nid, region, district, bike, status, created_at`

func (s *SQLRiderRepository) Create(ctx context.Context, a *domain.RiderApplication) (err error) {
	defer obs.Time(ctx, "riders.Create")(&err)

	if s.DB == nil {
		return errors.New("sql rider repository: DB is nil")
	}

	q := `INSERT INTO riders (` + riderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	if _, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(q),
		a.ID, a.Email, a.Name, a.Phone, a.NID, a.Region, a.District, a.Bike, string(a.Status), toUnix(a.CreatedAt),
	); err != nil {
		return fmt.Errorf("create rider application email=%s: %w", a.Email, err)
	}
	return nil
}

func (s *SQLRiderRepository) Get(ctx context.Context, id string) (_ *domain.RiderApplication, err error) {
	defer obs.Time(ctx, "riders.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql rider repository: DB is nil")
	}

	q := `SELECT ` + riderColumns + ` FROM riders WHERE id = ?;`
	a, err := scanRider(s.DB.QueryRowContext(ctx, s.Dialect.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get rider application id=%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rider application id=%s: %w", id, err)
	}
	return a, nil
}

// Return applications in a status, oldest first.
func (s *SQLRiderRepository) ListByStatus(ctx context.Context, status domain.RiderStatus) (_ []*domain.RiderApplication, err error) {
	defer obs.Time(ctx, "riders.ListByStatus")(&err)

	if s.DB == nil {
		return nil, errors.New("sql rider repository: DB is nil")
	}

	q := `SELECT ` + riderColumns + ` FROM riders WHERE status = ? ORDER BY created_at, id;`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q), string(status))
	if err != nil {
		return nil, fmt.Errorf("list riders: query riders table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.RiderApplication, 0, 8)
	for rows.Next() {
		a, err := scanRider(rows)
		if err != nil {
			return nil, fmt.Errorf("list riders: scan row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list riders: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLRiderRepository) UpdateStatus(ctx context.Context, id string, status domain.RiderStatus) (err error) {
	defer obs.Time(ctx, "riders.UpdateStatus")(&err)

	if s.DB == nil {
		return errors.New("sql rider repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(`UPDATE riders SET status = ? WHERE id = ?;`), string(status), id)
	if err != nil {
		return fmt.Errorf("update rider status id=%s: %w", id, err)
	}
	return expectOneRow(res, "update rider status id="+id)
}

func scanRider(row rowScanner) (*domain.RiderApplication, error) {
	var a domain.RiderApplication
	var status string
	var at int64
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Phone, &a.NID, &a.Region, &a.District, &a.Bike, &status, &at); err != nil {
		return nil, err
	}
	a.Status = domain.RiderStatus(status)
	a.CreatedAt = fromUnix(at)
	return &a, nil
}
