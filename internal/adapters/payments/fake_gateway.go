package payments

import (
	"context"
	"fmt"
	"parcel-booking-service/internal/domain"
	"sync"
)

// FakeGateway issues deterministic intents without calling out. It backs
// local development when no gateway key is configured and the tests.
type FakeGateway struct {
	mu    sync.Mutex
	calls []FakeCall
}

type FakeCall struct {
	Amount   int64
	Currency string
	ParcelID string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (f *FakeGateway) CreateIntent(ctx context.Context, amount int64, currency, parcelID string) (domain.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, FakeCall{Amount: amount, Currency: currency, ParcelID: parcelID})
	n := len(f.calls)

	id := fmt.Sprintf("pi_fake_%d", n)
	return domain.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       amount,
		Currency:     currency,
	}, nil
}

func (f *FakeGateway) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}
