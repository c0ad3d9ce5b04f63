package dto

import "time"

type ContactRequest struct {
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Region        string `json:"region"`
	District      string `json:"district"`
	ServiceCenter string `json:"service_center"`
	Address       string `json:"address"`
	Instruction   string `json:"instruction"`
}

type BookParcelRequest struct {
	ParcelType string         `json:"parcel_type"`
	ParcelName string         `json:"parcel_name"`
	Weight     Weight         `json:"weight"`
	Sender     ContactRequest `json:"sender"`
	Receiver   ContactRequest `json:"receiver"`
}

type ContactResponse struct {
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Region        string `json:"region"`
	District      string `json:"district"`
	ServiceCenter string `json:"service_center"`
	Address       string `json:"address"`
	Instruction   string `json:"instruction"`
}

type ParcelResponse struct {
	ID             string          `json:"id"`
	TrackingID     string          `json:"tracking_id"`
	ParcelName     string          `json:"parcel_name"`
	ParcelType     string          `json:"parcel_type"`
	WeightKg       string          `json:"weight_kg"`
	Sender         ContactResponse `json:"sender"`
	Receiver       ContactResponse `json:"receiver"`
	Cost           int64           `json:"cost"`
	PaymentStatus  string          `json:"payment_status"`
	DeliveryStatus string          `json:"delivery_status"`
	CreatedBy      string          `json:"created_by"`
	RiderEmail     string          `json:"rider_email,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
}

type BookParcelResponse struct {
	Parcel ParcelResponse `json:"parcel"`
	Quote  QuoteResponse  `json:"quote"`
}

type ListParcelsResponse struct {
	Parcels []ParcelResponse `json:"parcels"`
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type StatusCountsResponse struct {
	Counts []StatusCountResponse `json:"counts"`
}

type DeliveryStatusRequest struct {
	Status     string `json:"status"`
	RiderEmail string `json:"rider_email"`
	Location   string `json:"location"`
}

type TrackingEventResponse struct {
	Status    string    `json:"status"`
	Details   string    `json:"details"`
	Location  string    `json:"location,omitempty"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
}

type TrackingResponse struct {
	TrackingID string                  `json:"tracking_id"`
	Events     []TrackingEventResponse `json:"events"`
}
