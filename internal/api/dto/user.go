package dto

import "time"

type RoleResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type UserResponse struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

type RiderApplicationRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	NID      string `json:"nid"`
	Region   string `json:"region"`
	District string `json:"district"`
	Bike     string `json:"bike"`
}

type RiderResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	NID       string    `json:"nid"`
	Region    string    `json:"region"`
	District  string    `json:"district"`
	Bike      string    `json:"bike"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ListRidersResponse struct {
	Riders []RiderResponse `json:"riders"`
}

type RiderStatusRequest struct {
	Status string `json:"status"`
}

type ServiceAreaResponse struct {
	Region      string   `json:"region"`
	District    string   `json:"district"`
	City        string   `json:"city"`
	CoveredArea []string `json:"covered_area"`
}

type ListServiceAreasResponse struct {
	Areas []ServiceAreaResponse `json:"areas"`
}
