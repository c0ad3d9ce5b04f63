package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"parcel-booking-service/internal/services"
	"time"
)

type RiderHandler struct {
	Riders ports.RiderRepository
	Roles  ports.RoleStore
	Now    func() time.Time
}

// Collection serves /riders: POST applies, GET lists by status for admins.
func (h *RiderHandler) Collection(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req dto.RiderApplicationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		at := time.Now()
		if h.Now != nil {
			at = h.Now()
		}

		a, err := services.ApplyRider(r.Context(), s, services.ApplyRiderRequest{
			Name:     req.Name,
			Phone:    req.Phone,
			NID:      req.NID,
			Region:   req.Region,
			District: req.District,
			Bike:     req.Bike,
			At:       at,
		}, h.Riders)
		if err != nil {
			writeServiceError(w, r, "apply rider", err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toRiderResponse(a))

	case http.MethodGet:
		status := domain.RiderPending
		if v := r.URL.Query().Get("status"); v != "" {
			st, err := domain.ParseRiderStatus(v)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "unknown rider status")
				return
			}
			status = st
		}

		riders, err := services.ListRiders(r.Context(), s, status, h.Riders)
		if err != nil {
			writeServiceError(w, r, "list riders", err)
			return
		}
		res := dto.ListRidersResponse{Riders: make([]dto.RiderResponse, 0, len(riders))}
		for _, a := range riders {
			res.Riders = append(res.Riders, toRiderResponse(a))
		}
		writeJSON(w, r, http.StatusOK, res)

	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

// Status serves PATCH /riders/{id}/status.
func (h *RiderHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	s, ok := session(w, r)
	if !ok {
		return
	}

	var req dto.RiderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := domain.ParseRiderStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown rider status")
		return
	}

	a, err := services.DecideRider(r.Context(), s, r.PathValue("id"), next, h.Riders, h.Roles)
	if err != nil {
		writeServiceError(w, r, "decide rider", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRiderResponse(a))
}

func toRiderResponse(a *domain.RiderApplication) dto.RiderResponse {
	return dto.RiderResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Phone:     a.Phone,
		NID:       a.NID,
		Region:    a.Region,
		District:  a.District,
		Bike:      a.Bike,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}
