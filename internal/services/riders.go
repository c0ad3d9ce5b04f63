package services

import (
	"context"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ApplyRiderRequest struct {
	Name     string
	Phone    string
	NID      string
	Region   string
	District string
	Bike     string
	At       time.Time
}

// ApplyRider files a pending rider application for the session user.
func ApplyRider(ctx context.Context, s domain.Session, req ApplyRiderRequest, repo ports.RiderRepository) (*domain.RiderApplication, error) {
	v := domain.NewValidationError()
	v.Required("name", req.Name, "name is required")
	v.Required("phone", req.Phone, "phone is required")
	v.Required("nid", req.NID, "national id is required")
	v.Required("region", req.Region, "region is required")
	v.Required("district", req.District, "district is required")
	v.Required("bike", req.Bike, "bike details are required")
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("apply rider: %w", err)
	}

	if s.Is(domain.RoleRider) {
		return nil, fmt.Errorf("apply rider: %s is already a rider: %w", s.Email, domain.ErrConflict)
	}

	a := &domain.RiderApplication{
		ID:        uuid.NewString(),
		Email:     s.Email,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		NID:       strings.TrimSpace(req.NID),
		Region:    strings.TrimSpace(req.Region),
		District:  strings.TrimSpace(req.District),
		Bike:      strings.TrimSpace(req.Bike),
		Status:    domain.RiderPending,
		CreatedAt: req.At.UTC(),
	}
	if err := repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("apply rider: %w", err)
	}
	return a, nil
}

// DecideRider applies an admin decision and syncs the applicant's role.
func DecideRider(
	ctx context.Context,
	s domain.Session,
	id string,
	next domain.RiderStatus,
	riders ports.RiderRepository,
	roles ports.RoleStore,
) (*domain.RiderApplication, error) {
	if !s.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("decide rider: %w", domain.ErrForbidden)
	}

	a, err := riders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("decide rider %s: %w", id, err)
	}
	if err := a.Transition(next); err != nil {
		return nil, err
	}

	if err := riders.UpdateStatus(ctx, a.ID, a.Status); err != nil {
		return nil, fmt.Errorf("decide rider %s: %w", id, err)
	}

	if role, ok := a.Status.RoleFor(); ok {
		if err := roles.SetRole(ctx, a.Email, role); err != nil {
			return nil, fmt.Errorf("decide rider %s: set role: %w", id, err)
		}
	}

	return a, nil
}

func ListRiders(ctx context.Context, s domain.Session, status domain.RiderStatus, riders ports.RiderRepository) ([]*domain.RiderApplication, error) {
	if !s.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("list riders: %w", domain.ErrForbidden)
	}

	out, err := riders.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list riders %s: %w", status, err)
	}
	return out, nil
}
