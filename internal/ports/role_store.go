package ports

import (
	"context"
	"parcel-booking-service/internal/domain"
)

// RoleStore resolves and updates user roles.
type RoleStore interface {
	// GetRole returns domain.RoleUser for unknown emails.
	GetRole(ctx context.Context, email string) (domain.Role, error)
	SetRole(ctx context.Context, email string, role domain.Role) error
}

// UserDirectory is the searchable view of known users.
type UserDirectory interface {
	// EnsureUser registers an email with the default role if it is unknown.
	EnsureUser(ctx context.Context, email string) error
	SearchUsers(ctx context.Context, emailPrefix string, limit int) ([]domain.User, error)
}
