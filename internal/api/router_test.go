package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"parcel-booking-service/internal/adapters/areas"
	"parcel-booking-service/internal/adapters/payments"
	"parcel-booking-service/internal/adapters/repositories"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/db"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail = "admin@example.com"
	userEmail  = "user@example.com"
	riderEmail = "rider@example.com"

	// Identities are normalized before use.
	mixedCaseUserEmail = "  User@Example.com "
)

type testServer struct {
	handler http.Handler
	gateway *payments.FakeGateway
	users   *repositories.SQLUserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSchema(ctx, conn))

	users := repositories.NewSQLUserRepository(conn, db.SQLite)
	require.NoError(t, users.SetRole(ctx, adminEmail, domain.RoleAdmin))
	require.NoError(t, users.SetRole(ctx, riderEmail, domain.RoleRider))

	gateway := payments.NewFakeGateway()
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	h := NewRouter(Deps{
		Parcels:  repositories.NewSQLParcelRepository(conn, db.SQLite),
		Tracking: repositories.NewSQLTrackingRepository(conn, db.SQLite),
		Payments: repositories.NewSQLPaymentRepository(conn, db.SQLite),
		Gateway:  gateway,
		Currency: "bdt",
		Roles:    users,
		Users:    users,
		Riders:   repositories.NewSQLRiderRepository(conn, db.SQLite),
		Areas: areas.NewCatalog([]domain.ServiceArea{
			{Region: "Dhaka", District: "Dhaka", City: "Dhaka", CoveredArea: []string{"Mirpur"}},
			{Region: "Sylhet", District: "Sylhet", City: "Sylhet"},
		}),
		DB: conn,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	})

	return &testServer{handler: h, gateway: gateway, users: users}
}

func (s *testServer) do(t *testing.T, method, path, email, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if email != "" {
		req.Header.Set(IdentityHeader, email)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr, out
}

const bookingBody = `{
	"parcel_type": "non-document",
	"parcel_name": "books",
	"weight": "3.2",
	"sender": {"name": "Rahim", "contact": "017", "region": "Dhaka", "district": "Dhaka",
		"service_center": "Mirpur", "address": "Road 1", "instruction": "call first"},
	"receiver": {"name": "Karim", "contact": "018", "region": "Sylhet", "district": "Sylhet",
		"service_center": "Zindabazar", "address": "Road 2", "instruction": "leave at desk"}
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr, _ = s.do(t, http.MethodPost, "/health", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}

func TestQuote(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		cost float64
	}{
		{"document intra", `{"parcel_type":"Document","sender_district":"Dhaka","receiver_district":"Dhaka"}`, 60},
		{"document inter", `{"parcel_type":"document","sender_district":"Dhaka","receiver_district":"Sylhet"}`, 80},
		{"non-document light intra", `{"parcel_type":"Not-Document","weight":2,"sender_district":"Dhaka","receiver_district":"Dhaka"}`, 110},
		{"non-document light inter", `{"parcel_type":"non-document","weight":"3","sender_district":"Dhaka","receiver_district":"Sylhet"}`, 150},
		{"heavy inter", `{"parcel_type":"non-document","weight":"3.2","sender_district":"Dhaka","receiver_district":"Sylhet"}`, 230},
		{"heavy intra", `{"parcel_type":"non-document","weight":5,"sender_district":"Dhaka","receiver_district":"Dhaka"}`, 190},
		{"blank weight", `{"parcel_type":"non-document","weight":"","sender_district":"Dhaka","receiver_district":"Sylhet"}`, 150},
		{"null weight", `{"parcel_type":"non-document","weight":null,"sender_district":"Dhaka","receiver_district":"Sylhet"}`, 150},
		{"padded districts", `{"parcel_type":"document","sender_district":"Dhaka ","receiver_district":" Dhaka"}`, 60},
		{"padded heavy intra", `{"parcel_type":"non-document","weight":5,"sender_district":"  Dhaka","receiver_district":"Dhaka\t"}`, 190},
		{"weight above cap", `{"parcel_type":"non-document","weight":"1e20","sender_district":"Dhaka","receiver_district":"Sylhet"}`, 150 + 997*40 + 40},
		{"huge exponent", `{"parcel_type":"non-document","weight":"1e100000000","sender_district":"Dhaka","receiver_district":"Sylhet"}`, 150 + 997*40 + 40},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := s.do(t, http.MethodPost, "/quotes", "", tc.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tc.cost, body["cost"])
		})
	}
}

func TestQuoteReportsCappedWeight(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.do(t, http.MethodPost, "/quotes", "", `{"parcel_type":"non-document","weight":2e9,"sender_district":"Dhaka","receiver_district":"Dhaka"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "1000", body["billable_weight_kg"])
	assert.Equal(t, float64(997), body["extra_kg"])
	assert.Equal(t, true, body["intra_district"])
}

func TestQuoteRejectsBadBodies(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.do(t, http.MethodPost, "/quotes", "", `{"parcel_type":"document","colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid json body", body["error"])

	rr, _ = s.do(t, http.MethodPost, "/quotes", "", `{"parcel_type":"document"}{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, http.MethodPost, "/quotes", "", `{"parcel_type":"crate"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/quotes", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)

	rr, _ := s.do(t, http.MethodPost, "/parcels", "", bookingBody)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/parcels/status-counts", userEmail, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/parcels/status-counts", adminEmail, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/users/search?email=a", riderEmail, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodPatch, "/parcels/x/delivery-status", userEmail, `{"status":"on_the_way"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestBookingValidation(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.do(t, http.MethodPost, "/parcels", userEmail, `{"parcel_type":"non-document","parcel_name":" "}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "parcel_name")
	assert.Contains(t, fields, "weight")
	assert.Contains(t, fields, "sender_district")
	assert.Contains(t, fields, "receiver_instruction")
}

func TestBookingRejectsUncoveredDistrict(t *testing.T) {
	s := newTestServer(t)

	body := bytes.Replace([]byte(bookingBody), []byte(`"district": "Sylhet"`), []byte(`"district": "Bandarban"`), 1)
	rr, out := s.do(t, http.MethodPost, "/parcels", userEmail, string(body))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, out["fields"], "receiver_district")
}

func TestParcelLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr, booked := s.do(t, http.MethodPost, "/parcels", mixedCaseUserEmail, bookingBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	parcel := booked["parcel"].(map[string]any)
	id := parcel["id"].(string)
	trackingID := parcel["tracking_id"].(string)
	assert.Equal(t, float64(230), parcel["cost"])
	assert.Equal(t, userEmail, parcel["created_by"])
	assert.Equal(t, "unpaid", parcel["payment_status"])
	assert.Len(t, trackingID, 8)
	assert.Equal(t, float64(230), booked["quote"].(map[string]any)["cost"])

	// Other users cannot see it; admins can.
	rr, _ = s.do(t, http.MethodGet, "/parcels/"+id, "other@example.com", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr, _ = s.do(t, http.MethodGet, "/parcels/"+id, adminEmail, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	// Assignment requires payment.
	rr, _ = s.do(t, http.MethodPatch, "/parcels/"+id+"/delivery-status", adminEmail,
		`{"status":"assigned","rider_email":"`+riderEmail+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, intent := s.do(t, http.MethodPost, "/payment-intents", userEmail, `{"parcel_id":"`+id+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, float64(23000), intent["amount"])
	assert.NotEmpty(t, intent["client_secret"])
	assert.Equal(t, "bdt", s.gateway.Calls()[0].Currency)

	rr, _ = s.do(t, http.MethodPost, "/payments", userEmail,
		`{"parcel_id":"`+id+`","transaction_id":"pi_fake_1","amount":230,"payment_method":"card"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, _ = s.do(t, http.MethodPost, "/payments", userEmail,
		`{"parcel_id":"`+id+`","transaction_id":"pi_fake_2","amount":230,"payment_method":"card"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, http.MethodPost, "/payment-intents", userEmail, `{"parcel_id":"`+id+`"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, http.MethodDelete, "/parcels/"+id, userEmail, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, history := s.do(t, http.MethodGet, "/payments", userEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, history["payments"], 1)

	steps := []struct {
		email string
		body  string
	}{
		{adminEmail, `{"status":"assigned","rider_email":"` + riderEmail + `"}`},
		{riderEmail, `{"status":"on_the_way","location":"Mirpur hub"}`},
		{riderEmail, `{"status":"delivered","location":"Sylhet"}`},
	}
	for _, st := range steps {
		rr, _ = s.do(t, http.MethodPatch, "/parcels/"+id+"/delivery-status", st.email, st.body)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr, got := s.do(t, http.MethodGet, "/parcels/"+id, userEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "delivered", got["delivery_status"])
	assert.Equal(t, "paid", got["payment_status"])
	assert.NotNil(t, got["delivered_at"])

	rr, tracking := s.do(t, http.MethodGet, "/trackings/"+trackingID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	events := tracking["events"].([]any)
	var statuses []string
	for _, e := range events {
		statuses = append(statuses, e.(map[string]any)["status"].(string))
	}
	assert.Equal(t, []string{"submitted", "payment_done", "assigned", "on_the_way", "delivered"}, statuses)

	rr, counts := s.do(t, http.MethodGet, "/parcels/status-counts", adminEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{map[string]any{"status": "delivered", "count": float64(1)}}, counts["counts"])
}

func TestDeleteUnpaidParcel(t *testing.T) {
	s := newTestServer(t)

	rr, booked := s.do(t, http.MethodPost, "/parcels", userEmail, bookingBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := booked["parcel"].(map[string]any)["id"].(string)

	rr, _ = s.do(t, http.MethodDelete, "/parcels/"+id, "other@example.com", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodDelete, "/parcels/"+id, userEmail, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/parcels/"+id, userEmail, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, list := s.do(t, http.MethodGet, "/parcels", userEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, list["parcels"])
}

func TestTrackingUnknownID(t *testing.T) {
	s := newTestServer(t)

	rr, _ := s.do(t, http.MethodGet, "/trackings/NOPE1234", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRiderApplicationPromotesRole(t *testing.T) {
	s := newTestServer(t)
	applicant := "new.rider@example.com"

	rr, app := s.do(t, http.MethodPost, "/riders", applicant,
		`{"name":"Jamal","phone":"019","nid":"123","region":"Dhaka","district":"Dhaka","bike":"Honda"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "pending", app["status"])

	rr, _ = s.do(t, http.MethodGet, "/riders?status=pending", applicant, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, pending := s.do(t, http.MethodGet, "/riders?status=pending", adminEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, pending["riders"], 1)

	rr, _ = s.do(t, http.MethodPatch, "/riders/"+app["id"].(string)+"/status", adminEmail, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, role := s.do(t, http.MethodGet, "/users/"+applicant+"/role", applicant, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rider", role["role"])

	rr, _ = s.do(t, http.MethodPatch, "/riders/"+app["id"].(string)+"/status", adminEmail, `{"status":"rejected"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUserRoles(t *testing.T) {
	s := newTestServer(t)

	rr, reg := s.do(t, http.MethodPost, "/users", userEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user", reg["role"])

	rr, _ = s.do(t, http.MethodGet, "/users/"+adminEmail+"/role", userEmail, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodPatch, "/users/"+userEmail+"/role", userEmail, `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodPatch, "/users/"+adminEmail+"/role", adminEmail, `{"role":"user"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, http.MethodPatch, "/users/"+userEmail+"/role", adminEmail, `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, found := s.do(t, http.MethodGet, "/users/search?email=user", adminEmail, "")
	require.Equal(t, http.StatusOK, rr.Code)
	users := found["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].(map[string]any)["role"])
}

func TestServiceAreas(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.do(t, http.MethodGet, "/service-areas", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["areas"], 2)
}
