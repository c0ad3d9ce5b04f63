package domain

import "time"

// Payment records a settled card payment for a parcel.
// Amount is in minor currency units, as reported by the gateway.
type Payment struct {
	ID            string
	ParcelID      string
	Email         string
	TransactionID string
	Amount        int64
	Method        string
	PaidAt        time.Time
}

// PaymentIntent is the gateway's handle for an in-flight card payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}
