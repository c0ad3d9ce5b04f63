package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/ports"
)

type ServiceAreaHandler struct {
	Areas ports.ServiceAreaCatalog
}

func (h *ServiceAreaHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	areas := h.Areas.Areas()
	res := dto.ListServiceAreasResponse{Areas: make([]dto.ServiceAreaResponse, 0, len(areas))}
	for _, a := range areas {
		covered := a.CoveredArea
		if covered == nil {
			covered = []string{}
		}
		res.Areas = append(res.Areas, dto.ServiceAreaResponse{
			Region:      a.Region,
			District:    a.District,
			City:        a.City,
			CoveredArea: covered,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
