package ports

import (
	"context"
	"parcel-booking-service/internal/domain"
)

type PaymentRepository interface {
	// Record stores the payment and marks its parcel paid atomically.
	// It returns domain.ErrConflict when the parcel is already paid.
	Record(ctx context.Context, p domain.Payment) error
	// ListByEmail returns a user's payments, newest first.
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}
