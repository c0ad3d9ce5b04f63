package ports

import (
	"context"
	"parcel-booking-service/internal/domain"
)

type RiderRepository interface {
	Create(ctx context.Context, a *domain.RiderApplication) error
	Get(ctx context.Context, id string) (*domain.RiderApplication, error)
	ListByStatus(ctx context.Context, status domain.RiderStatus) ([]*domain.RiderApplication, error)
	UpdateStatus(ctx context.Context, id string, status domain.RiderStatus) error
}
