package dto

import "time"

type PaymentIntentRequest struct {
	ParcelID string `json:"parcel_id"`
}

type PaymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type RecordPaymentRequest struct {
	ParcelID      string     `json:"parcel_id"`
	TransactionID string     `json:"transaction_id"`
	Amount        int64      `json:"amount"`
	Method        string     `json:"payment_method"`
	PaidAt        *time.Time `json:"paid_at"`
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	ParcelID      string    `json:"parcel_id"`
	Email         string    `json:"email"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"payment_method"`
	PaidAt        time.Time `json:"paid_at"`
}

type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}
