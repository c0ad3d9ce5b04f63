package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"parcel-booking-service/internal/services"
	"time"
)

// ParcelHandler exposes booking and parcel lifecycle endpoints.
type ParcelHandler struct {
	Repo     ports.ParcelRepository
	Tracking ports.TrackingRepository
	Areas    ports.ServiceAreaCatalog
	Now      func() time.Time
}

func (h *ParcelHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Collection serves /parcels.
func (h *ParcelHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.book(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *ParcelHandler) book(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	var req dto.BookParcelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// An unknown type is reported by booking validation with the other fields.
	pt, _ := domain.ParseParcelType(req.ParcelType)

	res, err := services.BookParcel(r.Context(), services.BookParcelRequest{
		Name:     req.ParcelName,
		Type:     pt,
		WeightKg: services.ParseWeight(string(req.Weight)),
		Sender:   toContact(req.Sender),
		Receiver: toContact(req.Receiver),
		BookedBy: s.Email,
		BookedAt: h.now(),
	}, h.Repo, h.Tracking, h.Areas)
	if err != nil {
		writeServiceError(w, r, "book parcel", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.BookParcelResponse{
		Parcel: toParcelResponse(res.Parcel),
		Quote:  toQuoteResponse(res.Parcel.Quote(), res.Estimate),
	})
}

func (h *ParcelHandler) list(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := domain.ParcelFilter{
		CreatedBy:  services.NormalizeEmail(q.Get("created_by")),
		RiderEmail: services.NormalizeEmail(q.Get("rider_email")),
	}
	if v := q.Get("payment_status"); v != "" {
		ps, err := domain.ParsePaymentStatus(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "payment_status must be paid or unpaid")
			return
		}
		f.PaymentStatus = ps
	}
	if v := q.Get("delivery_status"); v != "" {
		ds, err := domain.ParseDeliveryStatus(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unknown delivery_status")
			return
		}
		f.DeliveryStatus = ds
	}

	parcels, err := services.ListParcels(r.Context(), s, f, h.Repo)
	if err != nil {
		writeServiceError(w, r, "list parcels", err)
		return
	}

	res := dto.ListParcelsResponse{Parcels: make([]dto.ParcelResponse, 0, len(parcels))}
	for _, p := range parcels {
		res.Parcels = append(res.Parcels, toParcelResponse(p))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Item serves /parcels/{id}.
func (h *ParcelHandler) Item(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := services.GetParcel(r.Context(), s, id, h.Repo)
		if err != nil {
			writeServiceError(w, r, "get parcel", err)
			return
		}
		writeJSON(w, r, http.StatusOK, toParcelResponse(p))

	case http.MethodDelete:
		if err := services.DeleteParcel(r.Context(), s, id, h.Repo); err != nil {
			writeServiceError(w, r, "delete parcel", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, "GET, DELETE")
	}
}

func (h *ParcelHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s, ok := session(w, r)
	if !ok {
		return
	}

	counts, err := services.StatusCounts(r.Context(), s, h.Repo)
	if err != nil {
		writeServiceError(w, r, "status counts", err)
		return
	}

	res := dto.StatusCountsResponse{Counts: make([]dto.StatusCountResponse, 0, len(counts))}
	for _, c := range counts {
		res.Counts = append(res.Counts, dto.StatusCountResponse{Status: string(c.Status), Count: c.Count})
	}
	writeJSON(w, r, http.StatusOK, res)
}

// DeliveryStatus serves PATCH /parcels/{id}/delivery-status.
func (h *ParcelHandler) DeliveryStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	s, ok := session(w, r)
	if !ok {
		return
	}

	var req dto.DeliveryStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := domain.ParseDeliveryStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown delivery status")
		return
	}

	p, err := services.AdvanceDelivery(r.Context(), s, services.AdvanceDeliveryRequest{
		ParcelID:   r.PathValue("id"),
		Next:       next,
		RiderEmail: services.NormalizeEmail(req.RiderEmail),
		Location:   req.Location,
		At:         h.now(),
	}, h.Repo, h.Tracking)
	if err != nil {
		writeServiceError(w, r, "advance delivery", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toParcelResponse(p))
}

func toContact(c dto.ContactRequest) domain.Contact {
	return domain.Contact{
		Name:          c.Name,
		Phone:         c.Contact,
		Region:        c.Region,
		District:      c.District,
		ServiceCenter: c.ServiceCenter,
		Address:       c.Address,
		Instruction:   c.Instruction,
	}
}

func toContactResponse(c domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		Name:          c.Name,
		Contact:       c.Phone,
		Region:        c.Region,
		District:      c.District,
		ServiceCenter: c.ServiceCenter,
		Address:       c.Address,
		Instruction:   c.Instruction,
	}
}

func toParcelResponse(p *domain.Parcel) dto.ParcelResponse {
	return dto.ParcelResponse{
		ID:             p.ID,
		TrackingID:     p.TrackingID,
		ParcelName:     p.Name,
		ParcelType:     string(p.Type),
		WeightKg:       p.WeightKg.String(),
		Sender:         toContactResponse(p.Sender),
		Receiver:       toContactResponse(p.Receiver),
		Cost:           p.Cost,
		PaymentStatus:  string(p.PaymentStatus),
		DeliveryStatus: string(p.DeliveryStatus),
		CreatedBy:      p.CreatedBy,
		RiderEmail:     p.RiderEmail,
		CreatedAt:      p.CreatedAt,
		DeliveredAt:    p.DeliveredAt,
	}
}
