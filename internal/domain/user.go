package domain

import (
	"context"
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleRider Role = "rider"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleRider, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("parse role: unknown value %q", s)
	}
}

// User is a known account and its role.
type User struct {
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Session is the identity a request acts under. It is resolved once per
// request and passed explicitly through context.
type Session struct {
	Email string
	Role  Role
}

// Is reports whether the session holds any of the given roles.
func (s Session) Is(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
