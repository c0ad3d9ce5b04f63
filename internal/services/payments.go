package services

import (
	"context"
	"errors"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrPaymentsDisabled is returned when no gateway is configured.
var ErrPaymentsDisabled = errors.New("payment gateway is not configured")

// minorUnitsPerMajor converts whole currency units to the gateway's minor units.
const minorUnitsPerMajor = 100

// CreatePaymentIntent opens a card payment for the stored cost of a parcel.
func CreatePaymentIntent(
	ctx context.Context,
	s domain.Session,
	parcelID string,
	currency string,
	repo ports.ParcelRepository,
	gateway ports.PaymentGateway,
) (domain.PaymentIntent, error) {
	if gateway == nil {
		return domain.PaymentIntent{}, ErrPaymentsDisabled
	}

	p, err := GetParcel(ctx, s, parcelID, repo)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("create payment intent: %w", err)
	}
	if p.PaymentStatus == domain.PaymentPaid {
		return domain.PaymentIntent{}, fmt.Errorf("create payment intent: parcel %s already paid: %w", p.ID, domain.ErrConflict)
	}

	intent, err := gateway.CreateIntent(ctx, p.Cost*minorUnitsPerMajor, currency, p.ID)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("create payment intent: parcel %s: %w", p.ID, err)
	}
	return intent, nil
}

type RecordPaymentRequest struct {
	ParcelID      string
	TransactionID string
	Amount        int64
	Method        string
	PaidAt        time.Time
}

// RecordPayment stores a settled payment and marks the parcel paid. The
// amount, in whole currency units, must match the stored parcel cost.
func RecordPayment(
	ctx context.Context,
	s domain.Session,
	req RecordPaymentRequest,
	parcels ports.ParcelRepository,
	payments ports.PaymentRepository,
	tracking ports.TrackingRepository,
) (*domain.Payment, error) {
	v := domain.NewValidationError()
	v.Required("parcel_id", req.ParcelID, "parcel id is required")
	v.Required("transaction_id", req.TransactionID, "transaction id is required")
	if req.Amount <= 0 {
		v.Add("amount", "amount must be positive")
	}
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	p, err := GetParcel(ctx, s, req.ParcelID, parcels)
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	if req.Amount != p.Cost {
		v.Add("amount", fmt.Sprintf("amount must equal parcel cost %d", p.Cost))
		return nil, fmt.Errorf("record payment: parcel %s: %w", p.ID, v)
	}

	pay := domain.Payment{
		ID:            uuid.NewString(),
		ParcelID:      p.ID,
		Email:         s.Email,
		TransactionID: strings.TrimSpace(req.TransactionID),
		Amount:        req.Amount,
		Method:        req.Method,
		PaidAt:        req.PaidAt.UTC(),
	}
	if err := payments.Record(ctx, pay); err != nil {
		return nil, fmt.Errorf("record payment: parcel %s: %w", p.ID, err)
	}

	logTracking(ctx, tracking, domain.TrackingEvent{
		TrackingID: p.TrackingID,
		Status:     domain.TrackingPaymentDone,
		Details:    "paid by " + s.Email,
		UpdatedBy:  s.Email,
		CreatedAt:  pay.PaidAt,
	})

	return &pay, nil
}

// PaymentHistory lists payments made by email. Users only see their own;
// admins may look up anyone.
func PaymentHistory(ctx context.Context, s domain.Session, email string, repo ports.PaymentRepository) ([]domain.Payment, error) {
	email = NormalizeEmail(email)
	if email == "" {
		email = s.Email
	}
	if email != s.Email && !s.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("payment history: %w", domain.ErrForbidden)
	}

	pays, err := repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("payment history %s: %w", email, err)
	}
	return pays, nil
}
