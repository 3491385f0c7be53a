package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

func TestUnassignedDraftPaymentUsesSyntheticCustomer(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")

	temp, err := svc.AddTempOrder(ctx, pc, domain.TempOrderCreateRequest{
		InvoiceName: "batch-7",
		SubOrders: []domain.SubOrder{
			{CustomerName: "Walk-in", SellingPriceLYD: dec("60"), DownPaymentLYD: dec("10")},
			{CustomerName: "Walk-in 2", SellingPriceLYD: dec("40")},
		},
	})
	require.NoError(t, err)
	requireAmount(t, "100", temp.TotalAmount)
	requireAmount(t, "90", temp.RemainingAmount)
	assert.Empty(t, temp.ParentInvoiceID)

	subID := temp.SubOrders[0].SubOrderID
	paid, err := svc.AddTempOrderPayment(ctx, temp.ID, domain.TempOrderPaymentRequest{SubOrderID: subID, Amount: dec("80")})
	require.NoError(t, err)
	// 80 against a 50 remainder: the sub-order stops at zero while the
	// draft total still drops by the whole payment.
	requireAmount(t, "0", paid.SubOrders[0].RemainingAmount)
	requireAmount(t, "40", paid.SubOrders[1].RemainingAmount)
	requireAmount(t, "10", paid.RemainingAmount)

	entries, err := svc.ListTransactions(ctx, domain.TransactionFilter{CustomerID: domain.TempCustomerPrefix + subID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].OrderID)

	_, err = svc.AddTempOrderPayment(ctx, temp.ID, domain.TempOrderPaymentRequest{SubOrderID: "sub-missing", Amount: dec("1")})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssigningDraftConvertsIntoOrder(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "draft")

	temp, err := svc.AddTempOrder(ctx, pc, domain.TempOrderCreateRequest{
		InvoiceName:     "batch-8",
		TotalAmount:     dec("120"),
		RemainingAmount: dec("100"),
	})
	require.NoError(t, err)
	requireAmount(t, "0", customerDebt(t, svc, ctx, customer.ID))

	assigned := customer.ID
	converted, err := svc.UpdateTempOrder(ctx, pc, temp.ID, domain.TempOrderUpdateRequest{AssignedUserID: &assigned})
	require.NoError(t, err)
	require.NotEmpty(t, converted.ParentInvoiceID)
	assert.Equal(t, customer.Name, converted.AssignedUserName)

	parent, err := svc.GetOrder(ctx, converted.ParentInvoiceID)
	require.NoError(t, err)
	requireAmount(t, "120", parent.SellingPriceLYD)
	requireAmount(t, "100", parent.RemainingAmount)
	assert.True(t, strings.HasPrefix(parent.InvoiceNumber, "draft-"))
	requireAmount(t, "100", customerDebt(t, svc, ctx, customer.ID))

	other := "cus-other"
	_, err = svc.UpdateTempOrder(ctx, pc, temp.ID, domain.TempOrderUpdateRequest{AssignedUserID: &other})
	require.ErrorIs(t, err, store.ErrInvalidTransaction)
}

func TestConvertedDraftPaymentReducesParentOrder(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "parent")

	temp, err := svc.AddTempOrder(ctx, pc, domain.TempOrderCreateRequest{
		AssignedUserID: customer.ID,
		SubOrders:      []domain.SubOrder{{CustomerName: "Parent", SellingPriceLYD: dec("50")}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, temp.ParentInvoiceID)
	requireAmount(t, "50", customerDebt(t, svc, ctx, customer.ID))

	_, err = svc.AddTempOrderPayment(ctx, temp.ID, domain.TempOrderPaymentRequest{SubOrderID: temp.SubOrders[0].SubOrderID, Amount: dec("20")})
	require.NoError(t, err)

	parent, err := svc.GetOrder(ctx, temp.ParentInvoiceID)
	require.NoError(t, err)
	requireAmount(t, "30", parent.RemainingAmount)
	requireAmount(t, "30", customerDebt(t, svc, ctx, customer.ID))

	require.NoError(t, svc.DeleteTempOrder(ctx, pc, temp.ID))
	_, err = svc.GetOrder(ctx, temp.ParentInvoiceID)
	require.ErrorIs(t, err, store.ErrNotFound)
	requireAmount(t, "0", customerDebt(t, svc, ctx, customer.ID))

	remaining, err := svc.ListTempOrders(ctx, domain.TempOrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestAddTempOrderRejectsRemainingAboveTotal(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.AddTempOrder(ctx, pricingAt("5"), domain.TempOrderCreateRequest{
		TotalAmount:     dec("10"),
		RemainingAmount: dec("11"),
	})
	require.ErrorIs(t, err, store.ErrInvalidTransaction)
}
