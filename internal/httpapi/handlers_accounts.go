package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shipledger/backend/internal/domain"
)

func (a *API) handleListDeposits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	deposits, err := a.service.ListDeposits(r.Context(), domain.DepositFilter{
		RepresentativeID: strings.TrimSpace(query.Get("representative_id")),
		Status:           domain.DepositStatus(strings.TrimSpace(query.Get("status"))),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": deposits})
}

func (a *API) handleAddDeposit(w http.ResponseWriter, r *http.Request) {
	var req domain.DepositCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	deposit, err := a.service.AddDeposit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deposit)
}

func (a *API) handleGetDeposit(w http.ResponseWriter, r *http.Request) {
	deposit, err := a.service.GetDeposit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deposit)
}

func (a *API) handleUpdateDepositStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.DepositStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	deposit, err := a.service.UpdateDepositStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deposit)
}

func (a *API) handleDeleteDeposit(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteDeposit(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleListCreditors(w http.ResponseWriter, r *http.Request) {
	creditors, err := a.service.ListCreditors(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": creditors})
}

func (a *API) handleAddCreditor(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditorCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	creditor, err := a.service.AddCreditor(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, creditor)
}

func (a *API) handleGetCreditor(w http.ResponseWriter, r *http.Request) {
	creditor, err := a.service.GetCreditor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creditor)
}

func (a *API) handleUpdateCreditor(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditorUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	creditor, err := a.service.UpdateCreditor(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creditor)
}

func (a *API) handleDeleteCreditor(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteCreditor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleListCreditorDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := a.service.ListExternalDebts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": debts})
}

func (a *API) handleRecomputeCreditorDebt(w http.ResponseWriter, r *http.Request) {
	creditor, err := a.service.RecomputeCreditorDebt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creditor)
}

func (a *API) handleListExternalDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := a.service.ListExternalDebts(r.Context(), r.URL.Query().Get("creditor_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": debts})
}

func (a *API) handleAddExternalDebt(w http.ResponseWriter, r *http.Request) {
	var req domain.ExternalDebtCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	debt, err := a.service.AddExternalDebt(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (a *API) handleUpdateExternalDebt(w http.ResponseWriter, r *http.Request) {
	var req domain.ExternalDebtUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	debt, err := a.service.UpdateExternalDebt(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (a *API) handleDeleteExternalDebt(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteExternalDebt(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
