package services

import (
	"context"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var minNonDocumentWeight = decimal.RequireFromString("0.1")

type BookParcelRequest struct {
	Name     string
	Type     domain.ParcelType
	WeightKg decimal.Decimal
	Sender   domain.Contact
	Receiver domain.Contact
	BookedBy string
	BookedAt time.Time
}

type BookParcelResult struct {
	Parcel   *domain.Parcel
	Estimate domain.Estimate
}

// BookParcel validates a booking, prices it and persists the parcel.
//
// The quote path accepts incomplete input; booking does not. Required
// fields mirror what the booking form enforces, and districts must be
// covered when a catalog is configured.
func BookParcel(
	ctx context.Context,
	req BookParcelRequest,
	repo ports.ParcelRepository,
	tracking ports.TrackingRepository,
	areas ports.ServiceAreaCatalog,
) (*BookParcelResult, error) {
	if err := validateBooking(req, areas); err != nil {
		return nil, fmt.Errorf("book parcel: %w", err)
	}

	weight := req.WeightKg
	if req.Type == domain.ParcelTypeDocument {
		weight = decimal.Zero
	}

	p := &domain.Parcel{
		ID:             uuid.NewString(),
		TrackingID:     NewTrackingID(),
		Name:           strings.TrimSpace(req.Name),
		Type:           req.Type,
		WeightKg:       weight,
		Sender:         trimContact(req.Sender),
		Receiver:       trimContact(req.Receiver),
		PaymentStatus:  domain.PaymentUnpaid,
		DeliveryStatus: domain.DeliveryNotCollected,
		CreatedBy:      req.BookedBy,
		CreatedAt:      req.BookedAt.UTC(),
	}

	// Cost is computed exactly once, here, and stored with the parcel.
	est := EstimateCost(p.Quote())
	p.Cost = est.Cost

	if err := repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("book parcel: create parcel: %w", err)
	}

	logTracking(ctx, tracking, domain.TrackingEvent{
		TrackingID: p.TrackingID,
		Status:     domain.TrackingSubmitted,
		Details:    "parcel booked by " + p.CreatedBy,
		Location:   p.Sender.ServiceCenter,
		UpdatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
	})

	return &BookParcelResult{Parcel: p, Estimate: est}, nil
}

// NewTrackingID returns an 8 character uppercase identifier.
func NewTrackingID() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func validateBooking(req BookParcelRequest, areas ports.ServiceAreaCatalog) error {
	v := domain.NewValidationError()

	v.Required("parcel_name", req.Name, "description is required")
	if req.BookedBy == "" {
		v.Add("booked_by", "booking user is required")
	}

	switch req.Type {
	case domain.ParcelTypeDocument:
	case domain.ParcelTypeNonDocument:
		switch w := boundWeight(req.WeightKg); {
		case w.LessThan(minNonDocumentWeight):
			v.Add("weight", "weight is required, minimum 0.1kg")
		case w.GreaterThan(maxBillableWeight):
			v.Add("weight", fmt.Sprintf("weight must be at most %dkg", MaxWeightKg))
		}
	default:
		v.Add("parcel_type", "parcel type must be document or non-document")
	}

	validateContact(v, "sender", req.Sender, "pickup instruction is required")
	validateContact(v, "receiver", req.Receiver, "delivery instruction is required")

	if areas != nil {
		if d := strings.TrimSpace(req.Sender.District); d != "" && !areas.Covers(d) {
			v.Add("sender_district", fmt.Sprintf("district %q is not covered", d))
		}
		if d := strings.TrimSpace(req.Receiver.District); d != "" && !areas.Covers(d) {
			v.Add("receiver_district", fmt.Sprintf("district %q is not covered", d))
		}
	}

	return v.Err()
}

func validateContact(v *domain.ValidationError, prefix string, c domain.Contact, instructionMsg string) {
	v.Required(prefix+"_name", c.Name, "name is required")
	v.Required(prefix+"_contact", c.Phone, "contact is required")
	v.Required(prefix+"_region", c.Region, "region is required")
	v.Required(prefix+"_district", c.District, "district is required")
	v.Required(prefix+"_service_center", c.ServiceCenter, "hub is required")
	v.Required(prefix+"_address", c.Address, "address is required")
	v.Required(prefix+"_instruction", c.Instruction, instructionMsg)
}

func trimContact(c domain.Contact) domain.Contact {
	return domain.Contact{
		Name:          strings.TrimSpace(c.Name),
		Phone:         strings.TrimSpace(c.Phone),
		Region:        strings.TrimSpace(c.Region),
		District:      strings.TrimSpace(c.District),
		ServiceCenter: strings.TrimSpace(c.ServiceCenter),
		Address:       strings.TrimSpace(c.Address),
		Instruction:   strings.TrimSpace(c.Instruction),
	}
}

// logTracking appends a tracking event. Failures are logged and do not
// fail the operation that produced the event.
func logTracking(ctx context.Context, tracking ports.TrackingRepository, e domain.TrackingEvent) {
	if tracking == nil {
		return
	}
	if err := tracking.Append(ctx, e); err != nil {
		zap.L().Warn("tracking log write failed",
			zap.String("tracking_id", e.TrackingID),
			zap.String("status", e.Status),
			zap.Error(err),
		)
	}
}
