package services

import (
	"context"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"time"
)

// canView reports whether the session may read the parcel: its owner,
// its assigned rider, or an admin.
func canView(s domain.Session, p *domain.Parcel) bool {
	if s.Is(domain.RoleAdmin) {
		return true
	}
	if p.CreatedBy == s.Email {
		return true
	}
	return s.Is(domain.RoleRider) && p.RiderEmail == s.Email
}

func GetParcel(ctx context.Context, s domain.Session, id string, repo ports.ParcelRepository) (*domain.Parcel, error) {
	p, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get parcel %s: %w", id, err)
	}
	if !canView(s, p) {
		return nil, fmt.Errorf("get parcel %s: %w", id, domain.ErrForbidden)
	}
	return p, nil
}

// ListParcels scopes the filter to what the session may see. Admins list
// anything; riders see parcels assigned to them when they ask for rider
// parcels; everyone else only sees their own bookings.
func ListParcels(ctx context.Context, s domain.Session, f domain.ParcelFilter, repo ports.ParcelRepository) ([]*domain.Parcel, error) {
	switch {
	case s.Is(domain.RoleAdmin):
	case s.Is(domain.RoleRider) && f.RiderEmail != "":
		f.RiderEmail = s.Email
		f.CreatedBy = ""
	default:
		f.CreatedBy = s.Email
		f.RiderEmail = ""
	}

	pkgs, err := repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	return pkgs, nil
}

// DeleteParcel cancels an unpaid booking.
func DeleteParcel(ctx context.Context, s domain.Session, id string, repo ports.ParcelRepository) error {
	p, err := repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete parcel %s: %w", id, err)
	}
	if p.CreatedBy != s.Email && !s.Is(domain.RoleAdmin) {
		return fmt.Errorf("delete parcel %s: %w", id, domain.ErrForbidden)
	}
	if p.PaymentStatus == domain.PaymentPaid {
		return fmt.Errorf("delete parcel %s: paid parcels cannot be deleted: %w", id, domain.ErrConflict)
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete parcel %s: %w", id, err)
	}
	return nil
}

type AdvanceDeliveryRequest struct {
	ParcelID   string
	Next       domain.DeliveryStatus
	RiderEmail string
	Location   string
	At         time.Time
}

// AdvanceDelivery moves a parcel along its delivery lifecycle.
// Admins assign riders; the assigned rider picks up and delivers.
func AdvanceDelivery(
	ctx context.Context,
	s domain.Session,
	req AdvanceDeliveryRequest,
	repo ports.ParcelRepository,
	tracking ports.TrackingRepository,
) (*domain.Parcel, error) {
	p, err := repo.Get(ctx, req.ParcelID)
	if err != nil {
		return nil, fmt.Errorf("advance delivery %s: %w", req.ParcelID, err)
	}

	switch {
	case req.Next == domain.DeliveryAssigned && !s.Is(domain.RoleAdmin):
		return nil, fmt.Errorf("advance delivery %s: only admins assign riders: %w", p.ID, domain.ErrForbidden)
	case req.Next != domain.DeliveryAssigned && !s.Is(domain.RoleAdmin) && p.RiderEmail != s.Email:
		return nil, fmt.Errorf("advance delivery %s: parcel is not assigned to %s: %w", p.ID, s.Email, domain.ErrForbidden)
	}

	if err := p.Advance(req.Next, req.RiderEmail, req.At.UTC()); err != nil {
		return nil, err
	}

	if err := repo.UpdateDelivery(ctx, p); err != nil {
		return nil, fmt.Errorf("advance delivery %s: %w", p.ID, err)
	}

	details := fmt.Sprintf("parcel %s", p.DeliveryStatus)
	if p.DeliveryStatus == domain.DeliveryAssigned {
		details = "assigned to rider " + p.RiderEmail
	}
	logTracking(ctx, tracking, domain.TrackingEvent{
		TrackingID: p.TrackingID,
		Status:     string(p.DeliveryStatus),
		Details:    details,
		Location:   req.Location,
		UpdatedBy:  s.Email,
		CreatedAt:  req.At.UTC(),
	})

	return p, nil
}

// StatusCounts summarizes parcels by delivery status for the admin dashboard.
func StatusCounts(ctx context.Context, s domain.Session, repo ports.ParcelRepository) ([]domain.StatusCount, error) {
	if !s.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("status counts: %w", domain.ErrForbidden)
	}

	counts, err := repo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return counts, nil
}
