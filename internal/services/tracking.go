package services

import (
	"context"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"strings"
)

// TrackingHistory is public: anyone holding a tracking id may follow it.
func TrackingHistory(ctx context.Context, trackingID string, repo ports.TrackingRepository) ([]domain.TrackingEvent, error) {
	trackingID = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(trackingID), "#"))
	if trackingID == "" {
		v := domain.NewValidationError()
		v.Add("tracking_id", "tracking id is required")
		return nil, fmt.Errorf("tracking history: %w", v)
	}

	events, err := repo.History(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("tracking history %s: %w", trackingID, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("tracking history %s: %w", trackingID, domain.ErrNotFound)
	}
	return events, nil
}
