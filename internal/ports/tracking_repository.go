package ports

import (
	"context"
	"parcel-booking-service/internal/domain"
)

// Append-only store for tracking history.
type TrackingRepository interface {
	Append(ctx context.Context, e domain.TrackingEvent) error
	// History returns events for a tracking id, oldest first.
	History(ctx context.Context, trackingID string) ([]domain.TrackingEvent, error)
}
