package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxPostAttempts  = 4
	firstRetryDelay  = 200 * time.Millisecond
	maxErrorBodySize = 4 << 10
)

// apiError is a non-2xx reply from the gateway. Stripe-style APIs answer
// with {"error":{"type":...,"code":...,"param":...,"message":...}}; anything
// else is kept verbatim in Message.
type apiError struct {
	Status    int
	Type      string
	Code      string
	Param     string
	Message   string
	RequestID string

	// shouldRetry is the gateway's own retry hint, when it sent one.
	shouldRetry *bool
}

func (e *apiError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "card gateway: %d", e.Status)
	if e.Type != "" {
		b.WriteString(" " + e.Type)
	}
	if e.Code != "" {
		b.WriteString(" (" + e.Code + ")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.RequestID != "" {
		b.WriteString(" [request " + e.RequestID + "]")
	}
	return b.String()
}

func (e *apiError) retryable() bool {
	if e.shouldRetry != nil {
		return *e.shouldRetry
	}
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

func decodeAPIError(resp *http.Response) *apiError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	e := &apiError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get("Request-Id"),
	}
	switch resp.Header.Get("Stripe-Should-Retry") {
	case "true":
		e.shouldRetry = ptr(true)
	case "false":
		e.shouldRetry = ptr(false)
	}

	var body struct {
		Error struct {
			Type    string `json:"type"`
			Code    string `json:"code"`
			Param   string `json:"param"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		e.Type = body.Error.Type
		e.Code = body.Error.Code
		e.Param = body.Error.Param
		e.Message = body.Error.Message
		return e
	}

	e.Message = strings.TrimSpace(string(raw))
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

// post sends a form-encoded POST to path. The same idempotency key is sent
// on every attempt, so the gateway applies the request at most once.
// Rate limits, 5xx replies and network errors are retried with exponential
// backoff unless the gateway says otherwise.
func (g *CardGateway) post(
	ctx context.Context,
	path string,
	form url.Values,
	idempotencyKey string,
) (*http.Response, error) {
	encoded := form.Encode()
	delay := firstRetryDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(encoded))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Idempotency-Key", idempotencyKey)

		resp, err := g.session.Do(req)
		if err == nil && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			apiErr := decodeAPIError(resp)
			resp.Body.Close()
			err = apiErr
		}

		if attempt == maxPostAttempts || !retryable(err) {
			return nil, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

func retryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func ptr[T any](v T) *T { return &v }
