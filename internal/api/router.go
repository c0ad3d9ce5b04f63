package api

import (
	"net/http"
	"parcel-booking-service/internal/api/handlers"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/ports"
	"time"
)

// Deps are the ports the HTTP layer is built from.
type Deps struct {
	Parcels  ports.ParcelRepository
	Tracking ports.TrackingRepository
	Payments ports.PaymentRepository
	Gateway  ports.PaymentGateway
	Currency string
	Roles    ports.RoleStore
	Users    ports.UserDirectory
	Riders   ports.RiderRepository
	Areas    ports.ServiceAreaCatalog
	DB       handlers.Pinger
	Now      func() time.Time
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{DB: d.DB}
	parcels := &handlers.ParcelHandler{Repo: d.Parcels, Tracking: d.Tracking, Areas: d.Areas, Now: d.Now}
	tracking := &handlers.TrackingHandler{Repo: d.Tracking}
	payments := &handlers.PaymentHandler{
		Parcels:  d.Parcels,
		Payments: d.Payments,
		Tracking: d.Tracking,
		Gateway:  d.Gateway,
		Currency: d.Currency,
		Now:      d.Now,
	}
	users := &handlers.UserHandler{Roles: d.Roles, Users: d.Users}
	riders := &handlers.RiderHandler{Riders: d.Riders, Roles: d.Roles, Now: d.Now}
	areas := &handlers.ServiceAreaHandler{Areas: d.Areas}

	// Public.
	mux.HandleFunc("/health", health.Check)
	mux.HandleFunc("/quotes", handlers.Quote)
	mux.HandleFunc("/trackings/{trackingID}", tracking.History)
	mux.HandleFunc("/service-areas", areas.List)

	// Any signed-in user; services narrow access further per record.
	mux.Handle("/parcels", requireRole(parcels.Collection))
	mux.Handle("/parcels/{id}", requireRole(parcels.Item))
	mux.Handle("/payment-intents", requireRole(payments.Intent))
	mux.Handle("/payments", requireRole(payments.Collection))
	mux.Handle("/users", requireRole(users.Register))
	mux.Handle("/users/{email}/role", requireRole(users.Role))
	mux.Handle("/riders", requireRole(riders.Collection))

	mux.Handle("/parcels/{id}/delivery-status", requireRole(parcels.DeliveryStatus, domain.RoleRider, domain.RoleAdmin))

	// Admin only.
	mux.Handle("/parcels/status-counts", requireRole(parcels.StatusCounts, domain.RoleAdmin))
	mux.Handle("/users/search", requireRole(users.Search, domain.RoleAdmin))
	mux.Handle("/riders/{id}/status", requireRole(riders.Status, domain.RoleAdmin))

	var h http.Handler = mux
	h = sessionMiddleware(d.Roles)(h)
	h = loggingMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}
