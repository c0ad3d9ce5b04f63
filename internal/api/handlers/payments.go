package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"parcel-booking-service/internal/services"
	"time"
)

type PaymentHandler struct {
	Parcels  ports.ParcelRepository
	Payments ports.PaymentRepository
	Tracking ports.TrackingRepository
	Gateway  ports.PaymentGateway
	Currency string
	Now      func() time.Time
}

// Intent serves POST /payment-intents.
func (h *PaymentHandler) Intent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	s, ok := session(w, r)
	if !ok {
		return
	}

	var req dto.PaymentIntentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ParcelID == "" {
		writeError(w, r, http.StatusBadRequest, "parcel_id is required")
		return
	}

	intent, err := services.CreatePaymentIntent(r.Context(), s, req.ParcelID, h.Currency, h.Parcels, h.Gateway)
	if err != nil {
		writeServiceError(w, r, "create payment intent", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.PaymentIntentResponse{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	})
}

// Collection serves /payments: POST records a settled payment, GET lists
// the caller's history (admins may pass ?email=).
func (h *PaymentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.record(w, r)
	case http.MethodGet:
		h.history(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *PaymentHandler) record(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	paidAt := time.Now()
	if h.Now != nil {
		paidAt = h.Now()
	}
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	pay, err := services.RecordPayment(r.Context(), s, services.RecordPaymentRequest{
		ParcelID:      req.ParcelID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Method:        req.Method,
		PaidAt:        paidAt,
	}, h.Parcels, h.Payments, h.Tracking)
	if err != nil {
		writeServiceError(w, r, "record payment", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toPaymentResponse(*pay))
}

func (h *PaymentHandler) history(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	pays, err := services.PaymentHistory(r.Context(), s, r.URL.Query().Get("email"), h.Payments)
	if err != nil {
		writeServiceError(w, r, "payment history", err)
		return
	}

	res := dto.ListPaymentsResponse{Payments: make([]dto.PaymentResponse, 0, len(pays))}
	for _, p := range pays {
		res.Payments = append(res.Payments, toPaymentResponse(p))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func toPaymentResponse(p domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            p.ID,
		ParcelID:      p.ParcelID,
		Email:         p.Email,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        p.Method,
		PaidAt:        p.PaidAt,
	}
}
