package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/store"
)

func TestFindBestAllocationTakesLargestFirst(t *testing.T) {
	cards := []domain.CreditCard{
		{ID: "card-c", Code: "C", Value: dec("5"), Status: domain.CreditAvailable},
		{ID: "card-a", Code: "A", Value: dec("30"), Status: domain.CreditAvailable},
		{ID: "card-b", Code: "B", Value: dec("20"), Status: domain.CreditAvailable},
	}

	allocation := FindBestAllocation(cards, dec("35"))
	require.Len(t, allocation.Items, 2)
	assert.Equal(t, "card-a", allocation.Items[0].CardID)
	requireAmount(t, "30", allocation.Items[0].Amount)
	assert.Equal(t, "card-b", allocation.Items[1].CardID)
	requireAmount(t, "5", allocation.Items[1].Amount)
	requireAmount(t, "35", allocation.Covered)
	requireAmount(t, "0", allocation.Remaining)
}

func TestFindBestAllocationReportsShortfall(t *testing.T) {
	cards := []domain.CreditCard{
		{ID: "card-a", Value: dec("10"), Status: domain.CreditAvailable},
		{ID: "card-b", Value: dec("10"), Status: domain.CreditExpired},
		{ID: "card-c", Value: dec("8"), Status: domain.CreditAvailable, Usages: []domain.CardUsage{{Amount: dec("8")}}},
	}

	allocation := FindBestAllocation(cards, dec("25"))
	require.Len(t, allocation.Items, 1)
	requireAmount(t, "10", allocation.Covered)
	requireAmount(t, "15", allocation.Remaining)
}

func TestFindBestAllocationBreaksTiesByID(t *testing.T) {
	cards := []domain.CreditCard{
		{ID: "card-z", Value: dec("10"), Status: domain.CreditAvailable},
		{ID: "card-m", Value: dec("10"), Status: domain.CreditAvailable},
	}

	allocation := FindBestAllocation(cards, dec("4"))
	require.Len(t, allocation.Items, 1)
	assert.Equal(t, "card-m", allocation.Items[0].CardID)
}

func TestConsumeCardsLeavesPartialCardAvailable(t *testing.T) {
	svc, ctx := newTestService(t)

	for _, card := range []struct {
		code  string
		value string
	}{{"A", "30"}, {"B", "20"}, {"C", "5"}} {
		_, err := svc.CreateCreditCard(ctx, domain.CreditCardCreateRequest{Code: card.code, Value: dec(card.value)})
		require.NoError(t, err)
	}

	allocation, err := svc.FindBestCardsForAmount(ctx, domain.AllocationRequest{Amount: dec("35")})
	require.NoError(t, err)
	requireAmount(t, "0", allocation.Remaining)

	touched, err := svc.ConsumeCards(ctx, domain.ConsumeCardsRequest{OrderID: "ord-1", Items: allocation.Items})
	require.NoError(t, err)
	require.Len(t, touched, 2)

	cards, err := svc.ListCreditCards(ctx, "")
	require.NoError(t, err)
	byCode := map[string]domain.CreditCard{}
	for _, card := range cards {
		byCode[card.Code] = card
	}
	assert.Equal(t, domain.CreditUsed, byCode["A"].Status)
	requireAmount(t, "0", byCode["A"].RemainingValue())
	assert.Equal(t, domain.CreditAvailable, byCode["B"].Status)
	requireAmount(t, "15", byCode["B"].RemainingValue())
	assert.Equal(t, "ord-1", byCode["B"].LastUsedForOrderID())
	requireAmount(t, "5", byCode["C"].RemainingValue())

	available, err := svc.ListCreditCards(ctx, domain.CreditAvailable)
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func TestCardKeepsEveryUsage(t *testing.T) {
	svc, ctx := newTestService(t)
	card, err := svc.CreateCreditCard(ctx, domain.CreditCardCreateRequest{Code: "MULTI", Value: dec("50")})
	require.NoError(t, err)

	for _, orderID := range []string{"ord-1", "ord-2"} {
		_, err := svc.ConsumeCards(ctx, domain.ConsumeCardsRequest{
			OrderID: orderID,
			Items:   []domain.CardAllocationItem{{CardID: card.ID, Amount: dec("20")}},
		})
		require.NoError(t, err)
	}

	cards, err := svc.ListCreditCards(ctx, "")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Len(t, cards[0].Usages, 2)
	assert.Equal(t, "ord-2", cards[0].LastUsedForOrderID())
	requireAmount(t, "10", cards[0].RemainingValue())
}

func TestProcessCostDeductionSplitsCardAndTreasury(t *testing.T) {
	svc, ctx := newTestService(t)
	card, err := svc.CreateCreditCard(ctx, domain.CreditCardCreateRequest{Code: "GIFT", Value: dec("50")})
	require.NoError(t, err)

	result, err := svc.ProcessCostDeduction(ctx, domain.CostDeductionRequest{
		OrderID:       "ord-9",
		InvoiceNumber: "x-009",
		TotalCost:     dec("70.456"),
		CardID:        card.ID,
	})
	require.NoError(t, err)
	requireAmount(t, "50", result.FromCard)
	requireAmount(t, "20.46", result.FromTreasury)
	requireAmount(t, "-20.46", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	onlyTreasury, err := svc.ProcessCostDeduction(ctx, domain.CostDeductionRequest{OrderID: "ord-10", TotalCost: dec("5")})
	require.NoError(t, err)
	requireAmount(t, "0", onlyTreasury.FromCard)
	requireAmount(t, "5", onlyTreasury.FromTreasury)
}

func TestDeleteOrderRestoresConsumedCredit(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "credit")

	resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{UserID: customer.ID, SellingPriceLYD: dec("300")})
	require.NoError(t, err)

	cashBefore := treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar)
	card, err := svc.CreateCreditCard(ctx, domain.CreditCardCreateRequest{Code: "RESTORE", Value: dec("30")})
	require.NoError(t, err)
	deduction, err := svc.ProcessCostDeduction(ctx, domain.CostDeductionRequest{OrderID: resp.Order.ID, TotalCost: dec("50"), CardID: card.ID})
	require.NoError(t, err)
	requireAmount(t, "30", deduction.FromCard)
	requireAmount(t, "20", deduction.FromTreasury)
	requireAmount(t, "-20", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar).Sub(cashBefore))

	used, err := svc.ListCreditCards(ctx, domain.CreditUsed)
	require.NoError(t, err)
	require.Len(t, used, 1)

	deleted, err := svc.DeleteOrder(ctx, pc, resp.Order.ID)
	require.NoError(t, err)
	requireAmount(t, "30", deleted.CreditRestored)
	requireAmount(t, "20", deleted.CostRefunded)
	requireAmount(t, cashBefore.String(), treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	available, err := svc.ListCreditCards(ctx, domain.CreditAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	requireAmount(t, "30", available[0].RemainingValue())
	require.Len(t, available[0].Usages, 1)
	assert.True(t, available[0].Usages[0].Reversed)

	report, err := svc.VerifyTreasury(ctx)
	require.NoError(t, err)
	for _, entry := range report {
		assert.True(t, entry.Drift.IsZero(), "card %s drifted by %s", entry.CardID, entry.Drift)
	}
}

func TestDeleteOrderRefundsPurchaseCostBesideDownPaymentReversal(t *testing.T) {
	svc, ctx := newTestService(t)
	pc := pricingAt("5")
	customer := createCustomer(t, svc, ctx, "costusd")

	resp, err := svc.CreateOrder(ctx, pc, domain.OrderCreateRequest{
		UserID:          customer.ID,
		SellingPriceLYD: dec("500"),
		DownPaymentLYD:  dec("100"),
		PaymentMethod:   domain.PaymentCashDollar,
	})
	require.NoError(t, err)
	requireAmount(t, "20", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	deduction, err := svc.ProcessCostDeduction(ctx, domain.CostDeductionRequest{OrderID: resp.Order.ID, TotalCost: dec("45.5")})
	require.NoError(t, err)
	requireAmount(t, "45.5", deduction.FromTreasury)
	requireAmount(t, "-25.5", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))

	entries, err := svc.ListTreasuryTransactions(ctx, "treasury-cash-dollar", 0)
	require.NoError(t, err)
	kinds := map[domain.TreasuryEntryKind]int{}
	for _, entry := range entries {
		kinds[entry.Kind]++
	}
	assert.Equal(t, 1, kinds[domain.EntryPurchaseCost])

	deleted, err := svc.DeleteOrder(ctx, pc, resp.Order.ID)
	require.NoError(t, err)
	assert.True(t, deleted.TreasuryReversed)
	requireAmount(t, "45.5", deleted.CostRefunded)
	requireAmount(t, "0", deleted.CreditRestored)
	requireAmount(t, "0", treasuryBalance(t, svc, ctx, domain.TreasuryCashDollar))
}

func TestManualTreasuryEntryCannotClaimPurchaseCostKind(t *testing.T) {
	svc, ctx := newTestService(t)

	entry, err := svc.RecordTreasuryTransaction(ctx, "treasury-cash-dollar", domain.TreasuryTransactionRequest{
		Amount:  dec("10"),
		Type:    domain.MovementDeposit,
		OrderID: "ord-x",
		Kind:    domain.EntryPurchaseCostRefund,
	})
	require.NoError(t, err)
	assert.Empty(t, entry.Kind)
}

func TestConsumeCardsRejectsMissingCard(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.ConsumeCards(ctx, domain.ConsumeCardsRequest{
		OrderID: "ord-1",
		Items:   []domain.CardAllocationItem{{CardID: "card-missing", Amount: dec("1")}},
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}
