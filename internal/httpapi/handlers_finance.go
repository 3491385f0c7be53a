package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shipledger/backend/internal/domain"
)

func (a *API) handleListTreasuryCards(w http.ResponseWriter, r *http.Request) {
	cards, err := a.service.ListTreasuryCards(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cards})
}

func (a *API) handleCreateTreasuryCard(w http.ResponseWriter, r *http.Request) {
	var req domain.TreasuryCardCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	card, err := a.service.CreateTreasuryCard(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (a *API) handleListTreasuryTransactions(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 200, 1000)
	txs, err := a.service.ListTreasuryTransactions(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": txs})
}

func (a *API) handleRecordTreasuryTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.TreasuryTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	txn, err := a.service.RecordTreasuryTransaction(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (a *API) handleVerifyTreasury(w http.ResponseWriter, r *http.Request) {
	drifts, err := a.service.VerifyTreasury(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	consistent := true
	for _, d := range drifts {
		if !d.Drift.IsZero() {
			consistent = false
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consistent": consistent,
		"cards":      drifts,
	})
}

func (a *API) handleListCreditCards(w http.ResponseWriter, r *http.Request) {
	status := domain.CreditCardStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	cards, err := a.service.ListCreditCards(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cards})
}

func (a *API) handleCreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditCardCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	card, err := a.service.CreateCreditCard(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (a *API) handleDeleteCreditCard(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteCreditCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleFindAllocation(w http.ResponseWriter, r *http.Request) {
	var req domain.AllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	allocation, err := a.service.FindBestCardsForAmount(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocation)
}

func (a *API) handleConsumeCards(w http.ResponseWriter, r *http.Request) {
	var req domain.ConsumeCardsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cards, err := a.service.ConsumeCards(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cards})
}

func (a *API) handleCostDeduction(w http.ResponseWriter, r *http.Request) {
	var req domain.CostDeductionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := a.service.ProcessCostDeduction(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleListWalletTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := a.service.ListWalletTransactions(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": txs})
}

func (a *API) handleAddWalletTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.WalletTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.UserID = chi.URLParam(r, "userID")
	txn, err := a.service.AddWalletTransaction(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (a *API) handleListTempOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.TempOrderFilter{
		AssignedUserID:  strings.TrimSpace(query.Get("assigned_user_id")),
		UnconvertedOnly: strings.EqualFold(strings.TrimSpace(query.Get("unconverted")), "true"),
	}
	temps, err := a.service.ListTempOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": temps})
}

func (a *API) handleAddTempOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.TempOrderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	temp, err := a.service.AddTempOrder(r.Context(), pc, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, temp)
}

func (a *API) handleGetTempOrder(w http.ResponseWriter, r *http.Request) {
	temp, err := a.service.GetTempOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, temp)
}

func (a *API) handleUpdateTempOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.TempOrderUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	temp, err := a.service.UpdateTempOrder(r.Context(), pc, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, temp)
}

func (a *API) handleDeleteTempOrder(w http.ResponseWriter, r *http.Request) {
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteTempOrder(r.Context(), pc, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleTempOrderPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.TempOrderPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	temp, err := a.service.AddTempOrderPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, temp)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.service.ListExpenses(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": expenses})
}

func (a *API) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.ExpenseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	expense, err := a.service.AddExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.service.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req domain.SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	settings, err := a.service.UpdateSettings(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) handleFinancialSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.FinancialSummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleResetReports(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.ResetFinancialReports(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	logs, err := a.service.ListAuditLogs(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": logs})
}

func (a *API) handleListStaff(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": a.auth.ListStaff(r.Context())})
}

func (a *API) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := a.auth.CreateStaff(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
