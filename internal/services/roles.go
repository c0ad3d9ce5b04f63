package services

import (
	"context"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"strings"
)

// ResolveSession builds the session for an authenticated email.
func ResolveSession(ctx context.Context, email string, roles ports.RoleStore) (domain.Session, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.Session{}, fmt.Errorf("resolve session: %w", domain.ErrUnauthorized)
	}

	role, err := roles.GetRole(ctx, email)
	if err != nil {
		return domain.Session{}, fmt.Errorf("resolve session %s: %w", email, err)
	}
	return domain.Session{Email: email, Role: role}, nil
}

// ChangeRole sets a user's role. Admins cannot demote themselves, which
// keeps at least the acting admin in place.
func ChangeRole(ctx context.Context, s domain.Session, email string, role domain.Role, roles ports.RoleStore) error {
	if !s.Is(domain.RoleAdmin) {
		return fmt.Errorf("change role: %w", domain.ErrForbidden)
	}

	email = NormalizeEmail(email)
	if email == "" {
		v := domain.NewValidationError()
		v.Add("email", "email is required")
		return fmt.Errorf("change role: %w", v)
	}
	if email == s.Email && role != domain.RoleAdmin {
		return fmt.Errorf("change role: admins cannot demote themselves: %w", domain.ErrConflict)
	}

	if err := roles.SetRole(ctx, email, role); err != nil {
		return fmt.Errorf("change role %s: %w", email, err)
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleOf reports the role of email. Users may ask about themselves only.
func RoleOf(ctx context.Context, s domain.Session, email string, roles ports.RoleStore) (domain.Role, error) {
	email = NormalizeEmail(email)
	if email != s.Email && !s.Is(domain.RoleAdmin) {
		return "", fmt.Errorf("role of %s: %w", email, domain.ErrForbidden)
	}

	role, err := roles.GetRole(ctx, email)
	if err != nil {
		return "", fmt.Errorf("role of %s: %w", email, err)
	}
	return role, nil
}

// RegisterUser records the session user on first sign-in.
func RegisterUser(ctx context.Context, s domain.Session, users ports.UserDirectory) error {
	if err := users.EnsureUser(ctx, s.Email); err != nil {
		return fmt.Errorf("register user %s: %w", s.Email, err)
	}
	return nil
}

const maxUserSearchResults = 10

func SearchUsers(ctx context.Context, s domain.Session, prefix string, users ports.UserDirectory) ([]domain.User, error) {
	if !s.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("search users: %w", domain.ErrForbidden)
	}

	prefix = NormalizeEmail(prefix)
	if prefix == "" {
		v := domain.NewValidationError()
		v.Add("email", "search text is required")
		return nil, fmt.Errorf("search users: %w", v)
	}

	found, err := users.SearchUsers(ctx, prefix, maxUserSearchResults)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return found, nil
}
