package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/db"
	"strings"
	"time"
)

// InitSchema creates all tables and indexes. It is safe to run repeatedly
// and the statements are valid on both SQLite and postgres.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createParcelsQuery := `
	CREATE TABLE IF NOT EXISTS parcels (
		id TEXT PRIMARY KEY,
		tracking_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		parcel_type TEXT NOT NULL,
		weight_kg TEXT NOT NULL,
		sender_name TEXT NOT NULL,
		sender_phone TEXT NOT NULL,
		sender_region TEXT NOT NULL,
		sender_district TEXT NOT NULL,
		sender_service_center TEXT NOT NULL,
		sender_address TEXT NOT NULL,
		pickup_instruction TEXT NOT NULL,
		receiver_name TEXT NOT NULL,
		receiver_phone TEXT NOT NULL,
		receiver_region TEXT NOT NULL,
		receiver_district TEXT NOT NULL,
		receiver_service_center TEXT NOT NULL,
		receiver_address TEXT NOT NULL,
		delivery_instruction TEXT NOT NULL,
		cost BIGINT NOT NULL,
		payment_status TEXT NOT NULL,
		delivery_status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		rider_email TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		delivered_at BIGINT
	);
	`

	createTrackingsQuery := `
	CREATE TABLE IF NOT EXISTS trackings (
		tracking_id TEXT NOT NULL,
		seq BIGINT NOT NULL,
		status TEXT NOT NULL,
		details TEXT NOT NULL,
		location TEXT NOT NULL,
		updated_by TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (tracking_id, seq)
	);
	`

	createPaymentsQuery := `
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		parcel_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		amount BIGINT NOT NULL,
		method TEXT NOT NULL,
		paid_at BIGINT NOT NULL
	);
	`

	createUsersQuery := `
	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);
	`

	createRidersQuery := `
	CREATE TABLE IF NOT EXISTS riders (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		nid TEXT NOT NULL,
		region TEXT NOT NULL,
		district TEXT NOT NULL,
		bike TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);
	`

	statements := []string{
		createParcelsQuery,
		createTrackingsQuery,
		createPaymentsQuery,
		createUsersQuery,
		createRidersQuery,
		`CREATE INDEX IF NOT EXISTS idx_parcels_created_by ON parcels(created_by, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_parcels_rider_email ON parcels(rider_email, delivery_status);`,
		`CREATE INDEX IF NOT EXISTS idx_payments_email ON payments(email, paid_at);`,
		`CREATE INDEX IF NOT EXISTS idx_riders_status ON riders(status, created_at);`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type UserSeed struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SeedUsersFromJSON upserts bootstrap accounts (typically the first admin)
// from a JSON file.
func SeedUsersFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed users: read %q: %w", jsonPath, err)
	}

	var data []UserSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed users: parse json: %w", err)
	}

	users := NewSQLUserRepository(conn, dialect)
	for i, item := range data {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		if email == "" {
			return fmt.Errorf("seed users: item at index %d: email cannot be empty", i+1)
		}

		role, err := domain.ParseRole(item.Role)
		if err != nil {
			return fmt.Errorf("seed users: item at index %d: %w", i+1, err)
		}

		if err := users.SetRole(ctx, email, role); err != nil {
			return fmt.Errorf("seed users: email=%s: %w", email, err)
		}
	}

	return nil
}

func toUnix(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toUnix(*t), Valid: true}
}

// expectOneRow maps a zero-row update or delete to domain.ErrNotFound.
func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
