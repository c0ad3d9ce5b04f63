package domain

import (
	"fmt"
	"time"
)

type RiderStatus string

const (
	RiderPending  RiderStatus = "pending"
	RiderApproved RiderStatus = "approved"
	RiderRejected RiderStatus = "rejected"
	RiderInactive RiderStatus = "inactive"
)

func ParseRiderStatus(s string) (RiderStatus, error) {
	switch st := RiderStatus(s); st {
	case RiderPending, RiderApproved, RiderRejected, RiderInactive:
		return st, nil
	default:
		return "", fmt.Errorf("parse rider status: unknown value %q", s)
	}
}

// RiderApplication is a request to deliver parcels for the service.
type RiderApplication struct {
	ID        string
	Email     string
	Name      string
	Phone     string
	NID       string
	Region    string
	District  string
	Bike      string
	Status    RiderStatus
	CreatedAt time.Time
}

// Transition applies an admin decision to the application.
func (a *RiderApplication) Transition(next RiderStatus) error {
	ok := false
	switch a.Status {
	case RiderPending:
		ok = next == RiderApproved || next == RiderRejected
	case RiderApproved:
		ok = next == RiderInactive
	}
	if !ok {
		return fmt.Errorf("rider application %s: %s -> %s: %w", a.ID, a.Status, next, ErrConflict)
	}
	a.Status = next
	return nil
}

// RoleFor returns the role a user holds after the application reaches status.
func (s RiderStatus) RoleFor() (Role, bool) {
	switch s {
	case RiderApproved:
		return RoleRider, true
	case RiderInactive:
		return RoleUser, true
	}
	return "", false
}
