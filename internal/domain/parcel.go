package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type DeliveryStatus string

const (
	DeliveryNotCollected DeliveryStatus = "not_collected"
	DeliveryAssigned     DeliveryStatus = "assigned"
	DeliveryOnTheWay     DeliveryStatus = "on_the_way"
	DeliveryDelivered    DeliveryStatus = "delivered"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch ps := PaymentStatus(s); ps {
	case PaymentUnpaid, PaymentPaid:
		return ps, nil
	default:
		return "", fmt.Errorf("parse payment status: unknown value %q", s)
	}
}

// ParseDeliveryStatus rejects values outside the delivery lifecycle.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch st := DeliveryStatus(s); st {
	case DeliveryNotCollected, DeliveryAssigned, DeliveryOnTheWay, DeliveryDelivered:
		return st, nil
	default:
		return "", fmt.Errorf("parse delivery status: unknown value %q", s)
	}
}

// Contact describes one end of a shipment.
type Contact struct {
	Name          string
	Phone         string
	Region        string
	District      string
	ServiceCenter string
	Address       string
	Instruction   string
}

// Parcel is a booked shipment. Cost is fixed at booking time and never
// recomputed afterwards.
type Parcel struct {
	ID             string
	TrackingID     string
	Name           string
	Type           ParcelType
	WeightKg       decimal.Decimal
	Sender         Contact
	Receiver       Contact
	Cost           int64
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	CreatedBy      string
	RiderEmail     string
	CreatedAt      time.Time
	DeliveredAt    *time.Time
}

// Quote returns the pricing input this parcel was booked with.
func (p *Parcel) Quote() Quote {
	return Quote{
		ParcelType:          p.Type,
		WeightKg:            p.WeightKg,
		OriginDistrict:      p.Sender.District,
		DestinationDistrict: p.Receiver.District,
	}
}

var nextDeliveryStatus = map[DeliveryStatus]DeliveryStatus{
	DeliveryNotCollected: DeliveryAssigned,
	DeliveryAssigned:     DeliveryOnTheWay,
	DeliveryOnTheWay:     DeliveryDelivered,
}

// Advance moves the parcel one step along its delivery lifecycle.
// Only paid parcels can be handed to a rider.
func (p *Parcel) Advance(next DeliveryStatus, riderEmail string, at time.Time) error {
	want, ok := nextDeliveryStatus[p.DeliveryStatus]
	if !ok || want != next {
		return fmt.Errorf("advance parcel %s: %s -> %s: %w", p.ID, p.DeliveryStatus, next, ErrConflict)
	}

	if p.DeliveryStatus == DeliveryNotCollected {
		if p.PaymentStatus != PaymentPaid {
			return fmt.Errorf("advance parcel %s: parcel is not paid: %w", p.ID, ErrConflict)
		}
		if riderEmail == "" {
			return fmt.Errorf("advance parcel %s: rider email is required for assignment: %w", p.ID, ErrConflict)
		}
		p.RiderEmail = riderEmail
	}

	if next == DeliveryDelivered {
		t := at
		p.DeliveredAt = &t
	}

	p.DeliveryStatus = next
	return nil
}

// ParcelFilter narrows a parcel listing. Zero-valued fields match everything.
type ParcelFilter struct {
	CreatedBy      string
	RiderEmail     string
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
}

// StatusCount is the number of parcels in one delivery status.
type StatusCount struct {
	Status DeliveryStatus
	Count  int
}
