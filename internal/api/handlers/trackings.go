package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/ports"
	"parcel-booking-service/internal/services"
)

type TrackingHandler struct {
	Repo ports.TrackingRepository
}

// History serves the public GET /trackings/{trackingID}.
func (h *TrackingHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	events, err := services.TrackingHistory(r.Context(), r.PathValue("trackingID"), h.Repo)
	if err != nil {
		writeServiceError(w, r, "tracking history", err)
		return
	}

	res := dto.TrackingResponse{
		TrackingID: events[0].TrackingID,
		Events:     make([]dto.TrackingEventResponse, 0, len(events)),
	}
	for _, e := range events {
		res.Events = append(res.Events, dto.TrackingEventResponse{
			Status:    e.Status,
			Details:   e.Details,
			Location:  e.Location,
			UpdatedBy: e.UpdatedBy,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
