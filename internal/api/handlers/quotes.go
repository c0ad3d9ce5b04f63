package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/services"
	"strings"
)

// Quote prices a parcel without booking it. Input is permissive: a blank
// or malformed weight prices as zero so the form can show a live estimate.
// Districts are trimmed the same way booking trims them.
func Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pt, err := domain.ParseParcelType(req.ParcelType)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "parcel_type must be document or non-document")
		return
	}

	q := domain.Quote{
		ParcelType:          pt,
		WeightKg:            services.ParseWeight(string(req.Weight)),
		OriginDistrict:      strings.TrimSpace(req.OriginDistrict),
		DestinationDistrict: strings.TrimSpace(req.DestinationDistrict),
	}
	writeJSON(w, r, http.StatusOK, toQuoteResponse(q, services.EstimateCost(q)))
}

func toQuoteResponse(q domain.Quote, est domain.Estimate) dto.QuoteResponse {
	res := dto.QuoteResponse{
		Cost:           est.Cost,
		ExtraKg:        est.ExtraKg,
		IntraDistrict:  q.IsIntraDistrict(),
		Breakdown:      make([]dto.LineItemResponse, 0, len(est.Breakdown)),
		BillableWeight: services.BillableWeight(q.WeightKg).String(),
	}
	if q.ParcelType == domain.ParcelTypeDocument {
		res.BillableWeight = "0"
	}
	for _, li := range est.Breakdown {
		res.Breakdown = append(res.Breakdown, dto.LineItemResponse{Label: li.Label, Amount: li.Amount})
	}
	return res
}
