package services

import (
	"context"
	"errors"
	"parcel-booking-service/internal/domain"
	"sort"
	"strings"
	"sync"
)

type memParcels struct {
	mu      sync.Mutex
	parcels map[string]*domain.Parcel
	lastF   domain.ParcelFilter
}

func newMemParcels() *memParcels {
	return &memParcels{parcels: map[string]*domain.Parcel{}}
}

func (m *memParcels) Create(ctx context.Context, p *domain.Parcel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.parcels[p.ID] = &cp
	return nil
}

func (m *memParcels) Get(ctx context.Context, id string) (*domain.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parcels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memParcels) List(ctx context.Context, f domain.ParcelFilter) ([]*domain.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastF = f

	var out []*domain.Parcel
	for _, p := range m.parcels {
		if f.CreatedBy != "" && p.CreatedBy != f.CreatedBy {
			continue
		}
		if f.RiderEmail != "" && p.RiderEmail != f.RiderEmail {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memParcels) UpdateDelivery(ctx context.Context, p *domain.Parcel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.parcels[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.DeliveryStatus = p.DeliveryStatus
	cur.RiderEmail = p.RiderEmail
	cur.DeliveredAt = p.DeliveredAt
	return nil
}

func (m *memParcels) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parcels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.parcels, id)
	return nil
}

func (m *memParcels) StatusCounts(ctx context.Context) ([]domain.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.DeliveryStatus]int{}
	for _, p := range m.parcels {
		counts[p.DeliveryStatus]++
	}
	var out []domain.StatusCount
	for s, n := range counts {
		out = append(out, domain.StatusCount{Status: s, Count: n})
	}
	return out, nil
}

func (m *memParcels) markPaid(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parcels[id].PaymentStatus = domain.PaymentPaid
}

type memTracking struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
	fail   bool
}

func (m *memTracking) Append(ctx context.Context, e domain.TrackingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("tracking store down")
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memTracking) History(ctx context.Context, trackingID string) ([]domain.TrackingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TrackingEvent
	for _, e := range m.events {
		if e.TrackingID == trackingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memTracking) statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Status)
	}
	return out
}

// memPayments marks parcels paid on the shared memParcels, like the SQL
// repository does in one transaction.
type memPayments struct {
	mu       sync.Mutex
	parcels  *memParcels
	payments []domain.Payment
}

func (m *memPayments) Record(ctx context.Context, p domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, err := m.parcels.Get(ctx, p.ParcelID)
	if err != nil {
		return err
	}
	if cur.PaymentStatus == domain.PaymentPaid {
		return domain.ErrConflict
	}
	m.parcels.markPaid(p.ParcelID)
	m.payments = append(m.payments, p)
	return nil
}

func (m *memPayments) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payment
	for _, p := range m.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, nil
}

type memRoles struct {
	mu    sync.Mutex
	roles map[string]domain.Role
}

func newMemRoles() *memRoles {
	return &memRoles{roles: map[string]domain.Role{}}
}

func (m *memRoles) GetRole(ctx context.Context, email string) (domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roles[email]; ok {
		return r, nil
	}
	return domain.RoleUser, nil
}

func (m *memRoles) SetRole(ctx context.Context, email string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[email] = role
	return nil
}

func (m *memRoles) EnsureUser(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[email]; !ok {
		m.roles[email] = domain.RoleUser
	}
	return nil
}

func (m *memRoles) SearchUsers(ctx context.Context, prefix string, limit int) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for e, r := range m.roles {
		if strings.HasPrefix(e, prefix) {
			out = append(out, domain.User{Email: e, Role: r})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memRiders struct {
	mu     sync.Mutex
	riders map[string]*domain.RiderApplication
}

func newMemRiders() *memRiders {
	return &memRiders{riders: map[string]*domain.RiderApplication{}}
}

func (m *memRiders) Create(ctx context.Context, a *domain.RiderApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.riders[a.ID] = &cp
	return nil
}

func (m *memRiders) Get(ctx context.Context, id string) (*domain.RiderApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.riders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRiders) ListByStatus(ctx context.Context, status domain.RiderStatus) ([]*domain.RiderApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RiderApplication
	for _, a := range m.riders {
		if a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRiders) UpdateStatus(ctx context.Context, id string, status domain.RiderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.riders[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	return nil
}

type staticAreas map[string]bool

func (s staticAreas) Areas() []domain.ServiceArea { return nil }

func (s staticAreas) Covers(district string) bool { return s[district] }

type recordingGateway struct {
	amount   int64
	currency string
}

func (g *recordingGateway) CreateIntent(ctx context.Context, amount int64, currency, parcelID string) (domain.PaymentIntent, error) {
	g.amount = amount
	g.currency = currency
	return domain.PaymentIntent{ID: "pi_" + parcelID, ClientSecret: "secret", Amount: amount, Currency: currency}, nil
}
