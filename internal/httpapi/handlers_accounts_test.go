package httpapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"shipledger/backend/internal/domain"
)

func TestCreditorDebtThroughHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/creditors", token, csrf, domain.CreditorCreateRequest{
		Name:           "Supplier Co",
		OpeningBalance: decimal.NewFromInt(500),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create creditor: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var creditor domain.Creditor
	decodeBody(t, rec, &creditor)
	if !creditor.TotalDebt.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total_debt 500, got %s", creditor.TotalDebt)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/external-debts", token, csrf, domain.ExternalDebtCreateRequest{
		CreditorID: creditor.ID,
		Amount:     decimal.NewFromInt(120),
		Status:     domain.ExternalDebtPayment,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("positive payment: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/external-debts", token, csrf, domain.ExternalDebtCreateRequest{
		CreditorID: creditor.ID,
		Amount:     decimal.NewFromInt(-120),
		Status:     domain.ExternalDebtPayment,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add payment: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/creditors/"+creditor.ID, token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get creditor: expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &creditor)
	if !creditor.TotalDebt.Equal(decimal.NewFromInt(380)) {
		t.Fatalf("expected total_debt 380 after payment, got %s", creditor.TotalDebt)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/creditors/"+creditor.ID+"/debts", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list debts: expected 200, got %d", rec.Code)
	}
	var debts struct {
		Items []domain.ExternalDebt `json:"items"`
	}
	decodeBody(t, rec, &debts)
	if len(debts.Items) != 2 {
		t.Fatalf("expected 2 debt entries, got %d", len(debts.Items))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/creditors/creditor-missing/debts", token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown creditor: expected 404, got %d", rec.Code)
	}
}

func TestManagerCannotDeleteCreditor(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "manager", "manager123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/creditors", token, csrf, domain.CreditorCreateRequest{Name: "Ali", Type: domain.CreditorPerson})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create creditor: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var creditor domain.Creditor
	decodeBody(t, rec, &creditor)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/creditors/"+creditor.ID, token, csrf, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDepositCollectionThroughHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/representatives", token, csrf, domain.RepresentativeCreateRequest{Name: "Salem"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create representative: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var rep domain.Representative
	decodeBody(t, rec, &rep)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/deposits", token, csrf, domain.DepositCreateRequest{
		CustomerName:     "Huda",
		Amount:           decimal.NewFromInt(75),
		RepresentativeID: rep.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add deposit: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var deposit domain.Deposit
	decodeBody(t, rec, &deposit)
	if deposit.Status != domain.DepositPending || !strings.HasPrefix(deposit.ReceiptNumber, "DEP-") {
		t.Fatalf("unexpected deposit %+v", deposit)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/deposits/"+deposit.ID+"/status", token, csrf, domain.DepositStatusRequest{Status: domain.DepositCollected})
	if rec.Code != http.StatusOK {
		t.Fatalf("collect deposit: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &deposit)
	if deposit.CollectedDate == nil {
		t.Fatalf("expected collected_date to be set")
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/deposits?status=bogus", token, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/deposits?representative_id="+rep.ID, token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list deposits: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Items []domain.Deposit `json:"items"`
	}
	decodeBody(t, rec, &listed)
	if len(listed.Items) != 1 {
		t.Fatalf("expected 1 deposit, got %d", len(listed.Items))
	}
}
