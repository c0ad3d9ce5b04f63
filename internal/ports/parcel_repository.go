package ports

import (
	"context"
	"parcel-booking-service/internal/domain"
)

// Port: storage boundary for booked parcels.
type ParcelRepository interface {
	Create(ctx context.Context, p *domain.Parcel) error
	// Get returns domain.ErrNotFound when no parcel has the id.
	Get(ctx context.Context, id string) (*domain.Parcel, error)
	// List returns matching parcels, newest first.
	List(ctx context.Context, f domain.ParcelFilter) ([]*domain.Parcel, error)
	// UpdateDelivery persists delivery status, rider and delivered_at.
	UpdateDelivery(ctx context.Context, p *domain.Parcel) error
	Delete(ctx context.Context, id string) error
	StatusCounts(ctx context.Context) ([]domain.StatusCount, error)
}
