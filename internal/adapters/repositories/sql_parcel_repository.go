package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/db"
	"parcel-booking-service/internal/platform/obs"
	"strings"
)

// SQL-backed implementation of the ParcelRepository port.
type SQLParcelRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLParcelRepository(conn *sql.DB, dialect db.Dialect) *SQLParcelRepository {
	return &SQLParcelRepository{DB: conn, Dialect: dialect}
}

const parcelColumns = `
		id,
		tracking_id,
		name,
		parcel_type,
		weight_kg,
		sender_name,
		sender_phone,
		sender_region,
		sender_district,
		sender_service_center,
		sender_address,
		pickup_instruction,
		receiver_name,
		receiver_phone,
		receiver_region,
		receiver_district,
		receiver_service_center,
		receiver_address,
		delivery_instruction,
		cost,
		payment_status,
		delivery_status,
		created_by,
		rider_email,
		created_at,
		delivered_at`

func (s *SQLParcelRepository) Create(ctx context.Context, p *domain.Parcel) (err error) {
	defer obs.Time(ctx, "parcels.Create")(&err)

	if s.DB == nil {
		return errors.New("sql parcel repository: DB is nil")
	}

	q := `INSERT INTO parcels (` + parcelColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err = s.DB.ExecContext(ctx, s.Dialect.Rebind(q),
		p.ID,
		p.TrackingID,
		p.Name,
		string(p.Type),
		p.WeightKg.String(),
		p.Sender.Name,
		p.Sender.Phone,
		p.Sender.Region,
		p.Sender.District,
		p.Sender.ServiceCenter,
		p.Sender.Address,
		p.Sender.Instruction,
		p.Receiver.Name,
		p.Receiver.Phone,
		p.Receiver.Region,
		p.Receiver.District,
		p.Receiver.ServiceCenter,
		p.Receiver.Address,
		p.Receiver.Instruction,
		p.Cost,
		string(p.PaymentStatus),
		string(p.DeliveryStatus),
		p.CreatedBy,
		p.RiderEmail,
		toUnix(p.CreatedAt),
		nullableUnix(p.DeliveredAt),
	)
	if err != nil {
		return fmt.Errorf("create parcel id=%s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLParcelRepository) Get(ctx context.Context, id string) (_ *domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql parcel repository: DB is nil")
	}

	q := `SELECT ` + parcelColumns + ` FROM parcels WHERE id = ?;`
	p, err := scanParcel(s.DB.QueryRowContext(ctx, s.Dialect.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get parcel id=%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get parcel id=%s: %w", id, err)
	}
	return p, nil
}

// Return parcels matching the filter, newest first.
func (s *SQLParcelRepository) List(ctx context.Context, f domain.ParcelFilter) (_ []*domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql parcel repository: DB is nil")
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if f.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, f.CreatedBy)
	}
	if f.RiderEmail != "" {
		where = append(where, "rider_email = ?")
		args = append(args, f.RiderEmail)
	}
	if f.PaymentStatus != "" {
		where = append(where, "payment_status = ?")
		args = append(args, string(f.PaymentStatus))
	}
	if f.DeliveryStatus != "" {
		where = append(where, "delivery_status = ?")
		args = append(args, string(f.DeliveryStatus))
	}

	q := `SELECT ` + parcelColumns + ` FROM parcels`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id;"

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list parcels: query parcels table: %w", err)
	}
	defer rows.Close()

	parcels := make([]*domain.Parcel, 0, 16)
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("list parcels: scan row: %w", err)
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parcels: row iteration: %w", err)
	}

	return parcels, nil
}

func (s *SQLParcelRepository) UpdateDelivery(ctx context.Context, p *domain.Parcel) (err error) {
	defer obs.Time(ctx, "parcels.UpdateDelivery")(&err)

	if s.DB == nil {
		return errors.New("sql parcel repository: DB is nil")
	}

	q := `
	UPDATE parcels
	SET delivery_status = ?,
		rider_email = ?,
		delivered_at = ?
	WHERE id = ?;
	`
	res, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(q),
		string(p.DeliveryStatus), p.RiderEmail, nullableUnix(p.DeliveredAt), p.ID)
	if err != nil {
		return fmt.Errorf("update parcel delivery id=%s: %w", p.ID, err)
	}
	return expectOneRow(res, "update parcel delivery id="+p.ID)
}

func (s *SQLParcelRepository) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "parcels.Delete")(&err)

	if s.DB == nil {
		return errors.New("sql parcel repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(`DELETE FROM parcels WHERE id = ?;`), id)
	if err != nil {
		return fmt.Errorf("delete parcel id=%s: %w", id, err)
	}
	return expectOneRow(res, "delete parcel id="+id)
}

// Count parcels per delivery status.
func (s *SQLParcelRepository) StatusCounts(ctx context.Context) (_ []domain.StatusCount, err error) {
	defer obs.Time(ctx, "parcels.StatusCounts")(&err)

	if s.DB == nil {
		return nil, errors.New("sql parcel repository: DB is nil")
	}

	q := `
	SELECT delivery_status, COUNT(*)
	FROM parcels
	GROUP BY delivery_status
	ORDER BY delivery_status;
	`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("parcel status counts: query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StatusCount, 0, 4)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("parcel status counts: scan row: %w", err)
		}
		out = append(out, domain.StatusCount{Status: domain.DeliveryStatus(status), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("parcel status counts: row iteration: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParcel(row rowScanner) (*domain.Parcel, error) {
	var (
		p                          domain.Parcel
		parcelType, weight         string
		paymentStatus, delivStatus string
		createdAt                  int64
		deliveredAt                sql.NullInt64
	)

	err := row.Scan(
		&p.ID,
		&p.TrackingID,
		&p.Name,
		&parcelType,
		&weight,
		&p.Sender.Name,
		&p.Sender.Phone,
		&p.Sender.Region,
		&p.Sender.District,
		&p.Sender.ServiceCenter,
		&p.Sender.Address,
		&p.Sender.Instruction,
		&p.Receiver.Name,
		&p.Receiver.Phone,
		&p.Receiver.Region,
		&p.Receiver.District,
		&p.Receiver.ServiceCenter,
		&p.Receiver.Address,
		&p.Receiver.Instruction,
		&p.Cost,
		&paymentStatus,
		&delivStatus,
		&p.CreatedBy,
		&p.RiderEmail,
		&createdAt,
		&deliveredAt,
	)
	if err != nil {
		return nil, err
	}

	if err := p.WeightKg.Scan(weight); err != nil {
		return nil, fmt.Errorf("parcel %s: weight %q: %w", p.ID, weight, err)
	}
	p.Type = domain.ParcelType(parcelType)
	p.PaymentStatus = domain.PaymentStatus(paymentStatus)
	p.DeliveryStatus = domain.DeliveryStatus(delivStatus)
	p.CreatedAt = fromUnix(createdAt)
	if deliveredAt.Valid {
		t := fromUnix(deliveredAt.Int64)
		p.DeliveredAt = &t
	}

	return &p, nil
}
