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

type SQLPaymentRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLPaymentRepository(conn *sql.DB, dialect db.Dialect) *SQLPaymentRepository {
	return &SQLPaymentRepository{DB: conn, Dialect: dialect}
}

// Record inserts the payment and flips the parcel to paid in one
// transaction. A parcel that is already paid yields domain.ErrConflict.
func (s *SQLPaymentRepository) Record(ctx context.Context, p domain.Payment) (err error) {
	defer obs.Time(ctx, "payments.Record")(&err)

	if s.DB == nil {
		return errors.New("sql payment repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record payment: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	update := `
	UPDATE parcels
	SET payment_status = ?
	WHERE id = ? AND payment_status = ?;
	`
	res, err := tx.ExecContext(ctx, s.Dialect.Rebind(update),
		string(domain.PaymentPaid), p.ParcelID, string(domain.PaymentUnpaid))
	if err != nil {
		return fmt.Errorf("record payment: mark parcel %s paid: %w", p.ParcelID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record payment: rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		q := `SELECT COUNT(*) FROM parcels WHERE id = ?;`
		if err := tx.QueryRowContext(ctx, s.Dialect.Rebind(q), p.ParcelID).Scan(&exists); err != nil {
			return fmt.Errorf("record payment: lookup parcel %s: %w", p.ParcelID, err)
		}
		if exists == 0 {
			return fmt.Errorf("record payment: parcel %s: %w", p.ParcelID, domain.ErrNotFound)
		}
		return fmt.Errorf("record payment: parcel %s already paid: %w", p.ParcelID, domain.ErrConflict)
	}

	insert := `
	INSERT INTO payments (
		id,
		parcel_id,
		email,
		transaction_id,
		amount,
		method,
		paid_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, s.Dialect.Rebind(insert),
		p.ID, p.ParcelID, p.Email, p.TransactionID, p.Amount, p.Method, toUnix(p.PaidAt),
	); err != nil {
		return fmt.Errorf("record payment: insert parcel=%s: %w", p.ParcelID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record payment: commit: %w", err)
	}
	return nil
}

func (s *SQLPaymentRepository) ListByEmail(ctx context.Context, email string) (_ []domain.Payment, err error) {
	defer obs.Time(ctx, "payments.ListByEmail")(&err)

	if s.DB == nil {
		return nil, errors.New("sql payment repository: DB is nil")
	}

	q := `
	SELECT id, parcel_id, email, transaction_id, amount, method, paid_at
	FROM payments
	WHERE email = ?
	ORDER BY paid_at DESC, id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q), email)
	if err != nil {
		return nil, fmt.Errorf("list payments: query payments table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Payment, 0, 8)
	for rows.Next() {
		var p domain.Payment
		var paidAt int64
		if err := rows.Scan(&p.ID, &p.ParcelID, &p.Email, &p.TransactionID, &p.Amount, &p.Method, &paidAt); err != nil {
			return nil, fmt.Errorf("list payments: scan row: %w", err)
		}
		p.PaidAt = fromUnix(paidAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: row iteration: %w", err)
	}

	return out, nil
}
