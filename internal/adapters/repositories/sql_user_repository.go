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
	"time"
)

// SQLUserRepository implements RoleStore and UserDirectory on the users table.
type SQLUserRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
	Now     func() time.Time
}

func NewSQLUserRepository(conn *sql.DB, dialect db.Dialect) *SQLUserRepository {
	return &SQLUserRepository{DB: conn, Dialect: dialect, Now: time.Now}
}

// Unknown emails hold the default user role.
func (s *SQLUserRepository) GetRole(ctx context.Context, email string) (_ domain.Role, err error) {
	defer obs.Time(ctx, "users.GetRole")(&err)

	if s.DB == nil {
		return "", errors.New("sql user repository: DB is nil")
	}

	var role string
	q := `SELECT role FROM users WHERE email = ?;`
	err = s.DB.QueryRowContext(ctx, s.Dialect.Rebind(q), email).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("get role %s: %w", email, err)
	}

	r, err := domain.ParseRole(role)
	if err != nil {
		return "", fmt.Errorf("get role %s: %w", email, err)
	}
	return r, nil
}

func (s *SQLUserRepository) SetRole(ctx context.Context, email string, role domain.Role) (err error) {
	defer obs.Time(ctx, "users.SetRole")(&err)

	if s.DB == nil {
		return errors.New("sql user repository: DB is nil")
	}

	q := `
	INSERT INTO users (email, role, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT (email) DO UPDATE
	SET role = EXCLUDED.role;
	`
	if _, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(q), email, string(role), toUnix(s.Now())); err != nil {
		return fmt.Errorf("set role %s: %w", email, err)
	}
	return nil
}

// EnsureUser registers an email with the default role if it is unknown.
func (s *SQLUserRepository) EnsureUser(ctx context.Context, email string) (err error) {
	defer obs.Time(ctx, "users.EnsureUser")(&err)

	if s.DB == nil {
		return errors.New("sql user repository: DB is nil")
	}

	q := `
	INSERT INTO users (email, role, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT (email) DO NOTHING;
	`
	if _, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(q), email, string(domain.RoleUser), toUnix(s.Now())); err != nil {
		return fmt.Errorf("ensure user %s: %w", email, err)
	}
	return nil
}

// SearchUsers returns users whose email starts with prefix, alphabetically.
func (s *SQLUserRepository) SearchUsers(ctx context.Context, prefix string, limit int) (_ []domain.User, err error) {
	defer obs.Time(ctx, "users.SearchUsers")(&err)

	if s.DB == nil {
		return nil, errors.New("sql user repository: DB is nil")
	}
	if limit <= 0 {
		limit = 10
	}

	// Escape LIKE wildcards so the prefix matches literally.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	q := `
	SELECT email, role, created_at
	FROM users
	WHERE email LIKE ? ESCAPE '\'
	ORDER BY email
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q), escaped+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search users: query users table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.User, 0, limit)
	for rows.Next() {
		var u domain.User
		var role string
		var at int64
		if err := rows.Scan(&u.Email, &role, &at); err != nil {
			return nil, fmt.Errorf("search users: scan row: %w", err)
		}
		u.Role = domain.Role(role)
		u.CreatedAt = fromUnix(at)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: row iteration: %w", err)
	}

	return out, nil
}
