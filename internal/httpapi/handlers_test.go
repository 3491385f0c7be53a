package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/service"
	"shipledger/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, nil, nil)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*", nil)
}

// mustHashPassword generates a bcrypt hash of the given password or fails the test.
func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

// doJSON sends an authenticated request through a single router instance.
func doJSON(t *testing.T, handler http.Handler, method string, path string, token string, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api.Handler(), http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleCustomers_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api.Handler(), http.MethodGet, "/api/v1/customers", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOrderLifecycleThroughHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/customers", token, csrf, domain.CustomerCreateRequest{
		Username: "ahmed",
		Name:     "Ahmed",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var customer domain.Customer
	decodeBody(t, rec, &customer)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/orders", token, csrf, domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: decimal.NewFromInt(500),
		DownPaymentLYD:  decimal.NewFromInt(200),
		ExchangeRate:    decimal.NewFromInt(5),
		PaymentMethod:   domain.PaymentCash,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created domain.OrderCreateResponse
	decodeBody(t, rec, &created)
	if !created.Order.RemainingAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected remaining 300, got %s", created.Order.RemainingAmount)
	}
	if created.DownPayment == nil {
		t.Fatalf("expected down payment transaction")
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/customers/"+customer.ID, token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get customer: expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &customer)
	if !customer.Debt.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected debt 300, got %s", customer.Debt)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/orders/"+created.Order.ID, token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete order: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/orders/"+created.Order.ID, token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateOrderUnknownCustomerReturns404(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "manager", "manager123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders", token, csrf, domain.OrderCreateRequest{
		UserID:          "cus-missing",
		SellingPriceLYD: decimal.NewFromInt(100),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateOrderUnknownPaymentMethodReturns400(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/orders", token, csrf, domain.OrderCreateRequest{
		UserID:          "any",
		SellingPriceLYD: decimal.NewFromInt(100),
		PaymentMethod:   "voucher",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestManagerCannotUpdateSettings(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "manager", "manager123")
	csrf := fetchCSRFToken(t, api)

	rate := decimal.NewFromInt(7)
	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/settings", token, csrf, domain.SettingsUpdateRequest{ExchangeRate: &rate})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/settings", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 reading settings, got %d", rec.Code)
	}
}

func TestAdminUpdatesSettings(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rate := decimal.NewFromInt(7)
	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/settings", token, csrf, domain.SettingsUpdateRequest{ExchangeRate: &rate})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var settings domain.Settings
	decodeBody(t, rec, &settings)
	if !settings.ExchangeRate.Equal(rate) {
		t.Fatalf("expected rate 7, got %s", settings.ExchangeRate)
	}
}

func TestTreasuryCardsListed(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "admin", "admin123")

	rec := doJSON(t, api.Handler(), http.MethodGet, "/api/v1/treasury/cards", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []domain.TreasuryCard `json:"items"`
	}
	decodeBody(t, rec, &body)
	if len(body.Items) != 3 {
		t.Fatalf("expected 3 seeded treasury cards, got %d", len(body.Items))
	}
}

func TestResetWithoutConfirmationReturns400(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api.Handler(), http.MethodPost, "/api/v1/reports/reset", token, csrf, domain.ResetRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

// TestMustHashPassword verifies that the test helper produces valid bcrypt hashes
// (used to confirm test infrastructure is sound).
func TestMustHashPassword(t *testing.T) {
	hash := mustHashPassword(t, "secret")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")); err != nil {
		t.Fatalf("hash verification failed: %v", err)
	}
}
