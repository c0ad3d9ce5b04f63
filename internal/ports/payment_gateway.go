package ports

import (
	"context"
	"parcel-booking-service/internal/domain"
)

// Contract for creating card payment intents with an external gateway.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, parcelID string) (domain.PaymentIntent, error)
}
