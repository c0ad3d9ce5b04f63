package handlers

import (
	"net/http"
	"parcel-booking-service/internal/api/dto"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"parcel-booking-service/internal/services"
)

type UserHandler struct {
	Roles ports.RoleStore
	Users ports.UserDirectory
}

// Register serves POST /users. The front end calls it after sign-in;
// repeated calls are harmless.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	s, ok := session(w, r)
	if !ok {
		return
	}

	if err := services.RegisterUser(r.Context(), s, h.Users); err != nil {
		writeServiceError(w, r, "register user", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RoleResponse{Email: s.Email, Role: string(s.Role)})
}

// Role serves /users/{email}/role.
func (h *UserHandler) Role(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	email := services.NormalizeEmail(r.PathValue("email"))

	switch r.Method {
	case http.MethodGet:
		role, err := services.RoleOf(r.Context(), s, email, h.Roles)
		if err != nil {
			writeServiceError(w, r, "get role", err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.RoleResponse{Email: email, Role: string(role)})

	case http.MethodPatch:
		var req dto.RoleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "role must be user, rider or admin")
			return
		}
		if err := services.ChangeRole(r.Context(), s, email, role, h.Roles); err != nil {
			writeServiceError(w, r, "change role", err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.RoleResponse{Email: email, Role: string(role)})

	default:
		methodNotAllowed(w, r, "GET, PATCH")
	}
}

// Search serves GET /users/search?email=prefix.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s, ok := session(w, r)
	if !ok {
		return
	}

	users, err := services.SearchUsers(r.Context(), s, r.URL.Query().Get("email"), h.Users)
	if err != nil {
		writeServiceError(w, r, "search users", err)
		return
	}

	res := dto.ListUsersResponse{Users: make([]dto.UserResponse, 0, len(users))}
	for _, u := range users {
		res.Users = append(res.Users, dto.UserResponse{Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt})
	}
	writeJSON(w, r, http.StatusOK, res)
}
