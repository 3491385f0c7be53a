package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shipledger/backend/internal/domain"
)

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": customers})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := a.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (a *API) handleRecomputeCustomerDebt(w http.ResponseWriter, r *http.Request) {
	customer, err := a.service.RecomputeCustomerDebt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (a *API) handleRecomputeAllDebts(w http.ResponseWriter, r *http.Request) {
	count, err := a.service.RecomputeAllDebts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers_recomputed": count})
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.OrderFilter{
		UserID:           strings.TrimSpace(query.Get("user_id")),
		Status:           domain.OrderStatus(strings.TrimSpace(query.Get("status"))),
		RepresentativeID: strings.TrimSpace(query.Get("representative_id")),
		Limit:            parsePositiveLimit(query.Get("limit"), 100, 500),
	}
	orders, err := a.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": orders})
}

func (a *API) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp, err := a.service.CreateOrder(r.Context(), pc, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := a.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp, err := a.service.DeleteOrder(r.Context(), pc, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleBulkDeleteOrders(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkOrdersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results, err := a.service.BulkDeleteOrders(r.Context(), pc, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": results})
}

func (a *API) handleBulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkOrdersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.BulkUpdateOrdersStatus(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleAmendWeight(w http.ResponseWriter, r *http.Request) {
	var req domain.WeightAmendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := a.service.AmendOrderWeight(r.Context(), pc, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleShippingCost(w http.ResponseWriter, r *http.Request) {
	var req domain.ShippingCostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pc, err := a.service.Pricing(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := a.service.AddCustomerShippingCost(r.Context(), pc, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleCollectPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.CollectPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.RecordRepresentativePayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleAssignRepresentative(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignRepresentativeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orders, err := a.service.AssignRepresentative(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": orders})
}

type setRepresentativeRequest struct {
	RepresentativeID string `json:"representative_id"`
}

func (a *API) handleSetRepresentative(w http.ResponseWriter, r *http.Request) {
	var req setRepresentativeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orders, err := a.service.AssignRepresentative(r.Context(), domain.AssignRepresentativeRequest{
		OrderIDs:         []string{chi.URLParam(r, "id")},
		RepresentativeID: req.RepresentativeID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(orders) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"items": orders})
		return
	}
	writeJSON(w, http.StatusOK, orders[0])
}

func (a *API) handleUnassignRepresentative(w http.ResponseWriter, r *http.Request) {
	order, err := a.service.UnassignRepresentative(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleReverseCredit(w http.ResponseWriter, r *http.Request) {
	restored, err := a.service.ReverseCreditUsage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credit_restored": restored})
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.TransactionFilter{
		CustomerID: strings.TrimSpace(query.Get("customer_id")),
		OrderID:    strings.TrimSpace(query.Get("order_id")),
		Limit:      parsePositiveLimit(query.Get("limit"), 100, 500),
	}
	txs, err := a.service.ListTransactions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": txs})
}

func (a *API) handleApplyTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	txn, err := a.service.ApplyTransaction(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (a *API) handleAmendTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionAmendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	txn, err := a.service.AmendTransaction(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (a *API) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	if err := a.service.RemoveTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleListRepresentatives(w http.ResponseWriter, r *http.Request) {
	reps, err := a.service.ListRepresentatives(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": reps})
}

func (a *API) handleCreateRepresentative(w http.ResponseWriter, r *http.Request) {
	var req domain.RepresentativeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := a.service.CreateRepresentative(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}
