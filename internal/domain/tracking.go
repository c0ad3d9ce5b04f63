package domain

import "time"

// Tracking statuses written alongside delivery transitions.
const (
	TrackingSubmitted   = "submitted"
	TrackingPaymentDone = "payment_done"
)

// TrackingEvent is one append-only entry in a parcel's tracking history.
type TrackingEvent struct {
	TrackingID string
	Status     string
	Details    string
	Location   string
	UpdatedBy  string
	CreatedAt  time.Time
}
