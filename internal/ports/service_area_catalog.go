package ports

import "parcel-booking-service/internal/domain"

// ServiceAreaCatalog answers coverage questions for booking.
type ServiceAreaCatalog interface {
	Areas() []domain.ServiceArea
	// Covers reports whether a district is served. An empty catalog covers everything.
	Covers(district string) bool
}
