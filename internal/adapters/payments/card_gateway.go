package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"
)

// CardGateway creates payment intents against a Stripe-compatible API.
//
// Amounts are in minor units. The client secret in the response is what
// the browser uses to confirm the card payment.
//
// The gateway is safe for concurrent use.
type CardGateway struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func NewCardGateway(apiKey, baseURL string) (*CardGateway, error) {
	if apiKey == "" {
		return nil, errors.New("card gateway: api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}

	return &CardGateway{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (g *CardGateway) CreateIntent(
	ctx context.Context,
	amount int64,
	currency string,
	parcelID string,
) (_ domain.PaymentIntent, err error) {
	defer obs.Time(ctx, "payments.CreateIntent")(&err)

	if amount <= 0 {
		return domain.PaymentIntent{}, fmt.Errorf("create intent: amount must be positive, got %d", amount)
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return domain.PaymentIntent{}, errors.New("create intent: currency is empty")
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Add("payment_method_types[]", "card")
	form.Set("metadata[parcel_id]", parcelID)

	// Retries of the same parcel must not open a second intent.
	key := "intent-" + parcelID + "-" + strconv.FormatInt(amount, 10)
	resp, err := g.post(ctx, "/v1/payment_intents", form, key)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("create intent: %w", err)
	}
	defer resp.Body.Close()

	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("create intent: decode response: %w", err)
	}
	if out.ClientSecret == "" {
		return domain.PaymentIntent{}, errors.New("create intent: response has no client secret")
	}

	return domain.PaymentIntent{
		ID:           out.ID,
		ClientSecret: out.ClientSecret,
		Amount:       out.Amount,
		Currency:     out.Currency,
	}, nil
}
