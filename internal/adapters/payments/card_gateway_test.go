package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardGatewayCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "15000", r.PostForm.Get("amount"))
		assert.Equal(t, "bdt", r.PostForm.Get("currency"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[]"))
		assert.Equal(t, "p-1", r.PostForm.Get("metadata[parcel_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret_x","amount":15000,"currency":"bdt"}`))
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	intent, err := g.CreateIntent(context.Background(), 15000, "BDT", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret_x", intent.ClientSecret)
	assert.Equal(t, int64(15000), intent.Amount)
}

func TestCardGatewayRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"pi_2","client_secret":"s","amount":6000,"currency":"bdt"}`))
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	intent, err := g.CreateIntent(context.Background(), 6000, "bdt", "p-2")
	require.NoError(t, err)
	assert.Equal(t, "pi_2", intent.ID)
	assert.Equal(t, int32(3), hits.Load())
}

func TestCardGatewayDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Request-Id", "req_123")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"amount_too_small","param":"amount","message":"bad amount"}}`))
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	_, err = g.CreateIntent(context.Background(), 6000, "bdt", "p-3")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid_request_error", apiErr.Type)
	assert.Equal(t, "amount_too_small", apiErr.Code)
	assert.Equal(t, "amount", apiErr.Param)
	assert.Equal(t, "bad amount", apiErr.Message)
	assert.Equal(t, "req_123", apiErr.RequestID)
	assert.Contains(t, err.Error(), "400 invalid_request_error (amount_too_small): bad amount [request req_123]")
	assert.Equal(t, int32(1), hits.Load())
}

func TestCardGatewayKeepsPlainErrorBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such route", http.StatusNotFound)
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	_, err = g.CreateIntent(context.Background(), 6000, "bdt", "p-5")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Empty(t, apiErr.Type)
	assert.Equal(t, "no such route", apiErr.Message)
}

func TestCardGatewayHonoursRetryHint(t *testing.T) {
	var hits atomic.Int32
	var keys sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys.Store(r.Header.Get("Idempotency-Key"), true)
		switch hits.Add(1) {
		case 1:
			// A conflict is normally final, but the gateway asks for a retry.
			w.Header().Set("Stripe-Should-Retry", "true")
			http.Error(w, `{"error":{"type":"idempotency_error","message":"lock timeout"}}`, http.StatusConflict)
		default:
			_, _ = w.Write([]byte(`{"id":"pi_6","client_secret":"s","amount":6000,"currency":"bdt"}`))
		}
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	intent, err := g.CreateIntent(context.Background(), 6000, "bdt", "p-6")
	require.NoError(t, err)
	assert.Equal(t, "pi_6", intent.ID)
	assert.Equal(t, int32(2), hits.Load())

	n := 0
	keys.Range(func(_, _ any) bool { n++; return true })
	assert.Equal(t, 1, n)
}

func TestCardGatewayStopsWhenGatewayRefusesRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Stripe-Should-Retry", "false")
		http.Error(w, `{"error":{"type":"api_error","message":"declined upstream"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	_, err = g.CreateIntent(context.Background(), 6000, "bdt", "p-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declined upstream")
	assert.Equal(t, int32(1), hits.Load())
}

func TestCardGatewayStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	g, err := NewCardGateway("sk_test", srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = g.CreateIntent(ctx, 6000, "bdt", "p-4")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCardGatewayValidatesInput(t *testing.T) {
	_, err := NewCardGateway("", "")
	assert.Error(t, err)

	g, err := NewCardGateway("sk_test", "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.stripe.com", g.baseURL)

	_, err = g.CreateIntent(context.Background(), 0, "bdt", "p")
	assert.Error(t, err)
	_, err = g.CreateIntent(context.Background(), 100, " ", "p")
	assert.Error(t, err)
}

func TestFakeGatewayRecordsCalls(t *testing.T) {
	f := NewFakeGateway()
	intent, err := f.CreateIntent(context.Background(), 8000, "bdt", "p-9")
	require.NoError(t, err)
	assert.Equal(t, "pi_fake_1", intent.ID)
	assert.Equal(t, []FakeCall{{Amount: 8000, Currency: "bdt", ParcelID: "p-9"}}, f.Calls())
}
